package systemd

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTextCaser implements TextCaser.
type DefaultTextCaser struct {
	caser cases.Caser
}

// NewDefaultTextCaser creates a new default text caser.
func NewDefaultTextCaser() *DefaultTextCaser {
	return &DefaultTextCaser{
		caser: cases.Title(language.English),
	}
}

// Title converts text to title case. Used when rendering lowercase systemd
// states ("active", "failed") for display.
func (c *DefaultTextCaser) Title(text string) string {
	return c.caser.String(text)
}
