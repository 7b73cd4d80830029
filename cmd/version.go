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
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// Build information set by goreleaser.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// releaseSlug is the GitHub repository releases are published under.
const releaseSlug = "trly/host-ops"

// VersionCommand represents the version command.
type VersionCommand struct{}

// NewVersionCommand creates a new VersionCommand.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

// GetCobraCommand returns the cobra command for displaying version information.
func (c *VersionCommand) GetCobraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for host-ops.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("host-ops version %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built: %s\n", Date)
			fmt.Printf("  go: %s\n", runtime.Version())

			c.checkForUpdates(cmd.Context())
		},
	}
}

// checkForUpdates reports whether a newer release is available.
func (c *VersionCommand) checkForUpdates(ctx context.Context) {
	if Version == "dev" {
		fmt.Println("\nSkipping update check for development build.")
		return
	}

	fmt.Println("\nChecking for updates...")

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	switch {
	case err != nil:
		fmt.Printf("Failed to check for updates: %v\n", err)
	case !found:
		fmt.Println("No release found")
	case latest.LessOrEqual(Version):
		fmt.Println("You are running the latest version.")
	default:
		fmt.Printf("A newer version is available: %s\n", latest.Version())
		fmt.Println("Run 'host-ops update' to install it.")
	}
}
