// Package validate provides environment and input validation for host-ops.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// validUnitName matches systemd unit naming conventions: alphanumeric, dots,
// dashes, underscores, @, and colons. Anything else could smuggle shell
// metacharacters or flags into subprocess argv.
var validUnitName = regexp.MustCompile(`^[a-zA-Z0-9._@:-]+$`)

// UnitName validates that a unit name is safe for use in commands.
func UnitName(unitName string) error {
	if unitName == "" {
		return fmt.Errorf("unit name cannot be empty")
	}
	if strings.HasPrefix(unitName, "-") {
		return fmt.Errorf("invalid unit name: leading dash")
	}
	if !validUnitName.MatchString(unitName) {
		return fmt.Errorf("invalid unit name: contains unsafe characters")
	}
	if len(unitName) > 256 {
		return fmt.Errorf("unit name too long")
	}
	return nil
}

// Path validates that a path doesn't contain path traversal sequences.
func Path(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if cleanPath != path && strings.Contains(path, "..") {
		return fmt.Errorf("path contains path traversal sequence")
	}

	if !filepath.IsAbs(cleanPath) && strings.HasPrefix(cleanPath, "..") {
		return fmt.Errorf("path attempts to traverse above working directory")
	}

	return nil
}

// PathWithinBase ensures a path stays within a base directory after
// cleaning. The report download endpoint routes every requested name
// through this before touching the filesystem.
func PathWithinBase(path, basePath string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if basePath == "" {
		return "", fmt.Errorf("base path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	cleanBase := filepath.Clean(basePath)

	absBase, err := filepath.Abs(cleanBase)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	var absPath string
	if filepath.IsAbs(cleanPath) {
		absPath = cleanPath
	} else {
		absPath = filepath.Join(absBase, cleanPath)
	}
	absPath = filepath.Clean(absPath)

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", fmt.Errorf("path escapes base directory")
	}

	return absPath, nil
}
