// Package cmd provides output formatting utilities for the host-ops CLI.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OperationResult is the structured form of a state-changing command's
// outcome.
type OperationResult struct {
	Success bool              `json:"success" yaml:"success"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
	Items   []string          `json:"items,omitempty" yaml:"items,omitempty"`
	Errors  []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// CheckResultStructured is one doctor check in structured output.
type CheckResultStructured struct {
	Name        string   `json:"name" yaml:"name"`
	Status      string   `json:"status" yaml:"status"`
	Message     string   `json:"message,omitempty" yaml:"message,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// HealthCheckOutput is the full doctor report in structured output.
type HealthCheckOutput struct {
	Overall string                  `json:"overall" yaml:"overall"`
	Checks  []CheckResultStructured `json:"checks" yaml:"checks"`
	Summary map[string]int          `json:"summary" yaml:"summary"`
}

// PrintOutput renders data in the requested output format. The text case is
// a plain fallback; commands with a real text mode format it themselves
// before getting here.
func PrintOutput(format string, data interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		return printJSON(data)
	case "yaml", "yml":
		return printYAML(data)
	case "text":
		fmt.Printf("%+v\n", data)
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// printJSON writes data to stdout as indented JSON.
func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// printYAML writes data to stdout as YAML.
func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() {
		_ = encoder.Close()
	}()
	return encoder.Encode(data)
}
