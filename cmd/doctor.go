// Package cmd provides the command line interface for host-ops
/*
Copyright © 2025 Travis Lyons travis.lyons@gmail.com

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DoctorOptions holds doctor command options.
type DoctorOptions struct {
	// Currently no specific options for doctor command
}

// DoctorDeps holds doctor dependencies.
type DoctorDeps struct {
	CommonDeps
	ViperConfigFile func() string
	GetOS           func() string
}

// DoctorCommand represents the doctor command for the host-ops CLI.
type DoctorCommand struct{}

// NewDoctorCommand creates a new DoctorCommand.
func NewDoctorCommand() *DoctorCommand {
	return &DoctorCommand{}
}

// getApp retrieves the App from the command context.
func (c *DoctorCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name        string
	Passed      bool
	Message     string
	Suggestions []string
}

// GetCobraCommand returns the cobra command for doctor operations.
func (c *DoctorCommand) GetCobraCommand() *cobra.Command {
	var opts DoctorOptions

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and configuration",
		Long: `Check system health and configuration for host-ops.

The doctor command performs comprehensive checks of:
- System requirements (systemd and the configured validation command)
- Configuration file validity
- Directory permissions and accessibility
- Unit inventory availability
- Database availability

This helps diagnose common setup and configuration issues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return doctorCmd
}

// buildDeps creates production dependencies for the doctor command.
func (c *DoctorCommand) buildDeps(app *App) DoctorDeps {
	return DoctorDeps{
		CommonDeps:      NewRootDeps(app),
		ViperConfigFile: func() string { return viper.GetViper().ConfigFileUsed() },
		GetOS:           func() string { return runtime.GOOS },
	}
}

// Run executes the doctor command with injected dependencies.
func (c *DoctorCommand) Run(ctx context.Context, app *App, _ DoctorOptions, deps DoctorDeps) error {
	// Collect all diagnostic results
	var results []CheckResult
	var failureCount int

	// Run all checks
	results = append(results, c.checkSystemRequirements(ctx, app, deps)...)
	results = append(results, c.checkConfiguration(app, deps)...)
	results = append(results, c.checkDirectories(app, deps)...)
	results = append(results, c.checkUnitInventory(app, deps)...)
	results = append(results, c.checkDatabase(ctx, app)...)

	// Count failures
	for _, result := range results {
		if !result.Passed {
			failureCount++
		}
	}

	// Display results based on output format
	if app.OutputFormat == "text" {
		// Traditional text output
		if app.Config.Verbose {
			c.displayDetailedResults(results)
		} else {
			c.displaySummaryResults(results)
		}

		// Return error instead of exiting
		if failureCount > 0 {
			if !app.Config.Verbose {
				fmt.Printf("\n%d checks failed. Run with --verbose for details.\n", failureCount)
			}
			return fmt.Errorf("doctor found %d issues", failureCount)
		} else if app.Config.Verbose {
			fmt.Println("\n✓ All checks passed")
		}
	} else {
		// Structured output (JSON/YAML)
		c.outputStructuredResults(app, results, failureCount)
		if failureCount > 0 {
			return fmt.Errorf("doctor found %d issues", failureCount)
		}
	}

	return nil
}

// checkSystemRequirements validates core system dependencies.
func (c *DoctorCommand) checkSystemRequirements(ctx context.Context, app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	err := app.Validator.SystemRequirements(ctx)
	if err != nil {
		var suggestions []string
		platform := deps.GetOS()

		if platform == "linux" {
			suggestions = []string{
				"Install systemd if running on a systemd-based system",
				"Install nginx so configuration validation can run",
				"Ensure systemctl and nginx are in your PATH",
			}
		} else {
			suggestions = []string{
				"host-ops requires Linux with systemd for service management",
			}
		}

		results = append(results, CheckResult{
			Name:        "System Requirements",
			Passed:      false,
			Message:     err.Error(),
			Suggestions: suggestions,
		})
	} else {
		results = append(results, CheckResult{
			Name:    "System Requirements",
			Passed:  true,
			Message: "systemd and the validation command are available",
		})
	}

	return results
}

// checkConfiguration validates configuration file and settings.
func (c *DoctorCommand) checkConfiguration(app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	// Check if config file exists and is readable
	configFile := deps.ViperConfigFile()
	if configFile == "" {
		results = append(results, CheckResult{
			Name:    "Configuration File",
			Passed:  false,
			Message: "No configuration file found",
			Suggestions: []string{
				"Create a configuration file at ~/.config/host-ops/config.yaml",
				"Or specify config file path with --config flag",
				"Run 'host-ops config show' to see current configuration",
			},
		})
	} else {
		if _, err := deps.FileSystem.Stat(configFile); err != nil {
			results = append(results, CheckResult{
				Name:    "Configuration File",
				Passed:  false,
				Message: fmt.Sprintf("Configuration file not accessible: %v", err),
				Suggestions: []string{
					"Check file permissions on " + configFile,
					"Verify the file path is correct",
				},
			})
		} else {
			results = append(results, CheckResult{
				Name:    "Configuration File",
				Passed:  true,
				Message: fmt.Sprintf("Configuration loaded from %s", configFile),
			})
		}
	}

	return results
}

// checkDirectories validates directory permissions and accessibility.
func (c *DoctorCommand) checkDirectories(app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	dirs := []struct {
		name string
		path string
	}{
		{"Sites Directory", app.Config.SitesDir},
		{"Unit Directory", app.Config.UnitDir},
		{"Report Directory", app.Config.ReportDir},
	}
	if app.Config.HistoryEnabled {
		dirs = append(dirs, struct {
			name string
			path string
		}{"History Directory", app.Config.HistoryDir})
	}

	for _, dir := range dirs {
		if err := c.checkDirectory(dir.path, deps); err != nil {
			results = append(results, CheckResult{
				Name:    dir.name,
				Passed:  false,
				Message: err.Error(),
				Suggestions: []string{
					fmt.Sprintf("Create directory: mkdir -p %s", dir.path),
					fmt.Sprintf("Fix permissions: chmod 755 %s", dir.path),
				},
			})
		} else {
			results = append(results, CheckResult{
				Name:    dir.name,
				Passed:  true,
				Message: fmt.Sprintf("Directory accessible at %s", dir.path),
			})
		}
	}

	return results
}

// checkUnitInventory validates the configured unit inventory file.
func (c *DoctorCommand) checkUnitInventory(app *App, deps DoctorDeps) []CheckResult {
	path := app.Config.UnitListPath
	if stat, err := deps.FileSystem.Stat(path); err != nil {
		return []CheckResult{{
			Name:    "Unit Inventory",
			Passed:  false,
			Message: fmt.Sprintf("Unit inventory not accessible: %v", err),
			Suggestions: []string{
				"Export the unit inventory to " + path,
				"Or point unitListPath at the exported CSV",
			},
		}}
	} else if stat.IsDir() {
		return []CheckResult{{
			Name:    "Unit Inventory",
			Passed:  false,
			Message: fmt.Sprintf("Unit inventory path is a directory: %s", path),
			Suggestions: []string{
				"Point unitListPath at the exported CSV file, not a directory",
			},
		}}
	}

	return []CheckResult{{
		Name:    "Unit Inventory",
		Passed:  true,
		Message: fmt.Sprintf("Unit inventory readable at %s", path),
	}}
}

// checkDatabase validates the site database is open and responding.
func (c *DoctorCommand) checkDatabase(ctx context.Context, app *App) []CheckResult {
	if app.DB == nil {
		return []CheckResult{{
			Name:    "Database",
			Passed:  false,
			Message: "Database handle is not open",
			Suggestions: []string{
				"Check the dbPath setting and its parent directory permissions",
			},
		}}
	}

	if err := app.DB.PingContext(ctx); err != nil {
		return []CheckResult{{
			Name:    "Database",
			Passed:  false,
			Message: fmt.Sprintf("Database not responding: %v", err),
			Suggestions: []string{
				"Check the dbPath setting and its parent directory permissions",
				fmt.Sprintf("Verify the database file at %s is not corrupted", app.Config.DBPath),
			},
		}}
	}

	return []CheckResult{{
		Name:    "Database",
		Passed:  true,
		Message: fmt.Sprintf("Database responding at %s", app.Config.DBPath),
	}}
}

// checkDirectory validates a directory exists and is accessible.
func (c *DoctorCommand) checkDirectory(path string, deps DoctorDeps) error {
	if path == "" {
		return fmt.Errorf("directory path is empty")
	}

	// Check if directory exists
	stat, err := deps.FileSystem.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return fmt.Errorf("cannot access directory: %v", err)
	}

	// Check if it's actually a directory
	if !stat.IsDir() {
		return fmt.Errorf("path exists but is not a directory: %s", path)
	}

	// Check if directory is writable
	testFile := filepath.Join(path, ".host-ops-test")
	if err := deps.FileSystem.WriteFile(testFile, []byte("test"), 0600); err != nil {
		return fmt.Errorf("directory is not writable: %v", err)
	}
	if err := deps.FileSystem.Remove(testFile); err != nil {
		deps.Logger.Debug("Failed to cleanup test file", "file", testFile, "error", err)
	}

	return nil
}

// displaySummaryResults shows a brief summary of check results.
func (c *DoctorCommand) displaySummaryResults(results []CheckResult) {
	var failed []CheckResult

	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}

	if len(failed) > 0 {
		fmt.Println("Issues found:")
		for _, result := range failed {
			fmt.Printf("✗ %s: %s\n", result.Name, result.Message)
		}
	}
}

// displayDetailedResults shows detailed information about all checks.
func (c *DoctorCommand) displayDetailedResults(results []CheckResult) {
	fmt.Println("System Health Check Results:")
	fmt.Println(strings.Repeat("=", 40))

	for _, result := range results {
		if result.Passed {
			fmt.Printf("✓ %s: %s\n", result.Name, result.Message)
		} else {
			fmt.Printf("✗ %s: %s\n", result.Name, result.Message)
			if len(result.Suggestions) > 0 {
				fmt.Println("  Suggestions:")
				for _, suggestion := range result.Suggestions {
					fmt.Printf("    - %s\n", suggestion)
				}
			}
		}
		fmt.Println()
	}
}

// outputStructuredResults outputs health check results in structured format (JSON/YAML).
func (c *DoctorCommand) outputStructuredResults(app *App, results []CheckResult, failureCount int) {
	checks := make([]CheckResultStructured, 0, len(results))
	passedCount := 0

	for _, result := range results {
		status := "failed"
		if result.Passed {
			status = "passed"
			passedCount++
		}

		checks = append(checks, CheckResultStructured{
			Name:        result.Name,
			Status:      status,
			Message:     result.Message,
			Suggestions: result.Suggestions,
		})
	}

	overall := "passed"
	if failureCount > 0 {
		overall = "failed"
	}

	output := HealthCheckOutput{
		Overall: overall,
		Checks:  checks,
		Summary: map[string]int{
			"total":  len(results),
			"passed": passedCount,
			"failed": failureCount,
		},
	}

	// Print structured output
	_ = PrintOutput(app.OutputFormat, output)
}
