// Package unit provides discovery, validation, and construction of the
// systemd units backing web applications on a managed host.
package unit

import "strings"

const (
	// ServiceSuffix is the filename suffix required for service units.
	ServiceSuffix = ".service"
	// TimerSuffix is the filename suffix for timer units paired with services.
	TimerSuffix = ".timer"
)

// ServiceUnit describes one systemd service unit backing a web application.
// Instances are ephemeral: they are rebuilt on every validation or inventory
// pass and persist only as part of a machine record.
type ServiceUnit struct {
	Filename         string `json:"filename" yaml:"filename"`
	Name             string `json:"name,omitempty" yaml:"name,omitempty"`
	WorkingDirectory string `json:"workingDirectory,omitempty" yaml:"workingDirectory,omitempty"`
	TimerFilename    string `json:"timerFilename,omitempty" yaml:"timerFilename,omitempty"`
	Port             string `json:"port,omitempty" yaml:"port,omitempty"`
}

// ServiceForTimer derives the service filename a timer unit pairs with.
func ServiceForTimer(timerFilename string) string {
	return strings.TrimSuffix(timerFilename, TimerSuffix) + ServiceSuffix
}
