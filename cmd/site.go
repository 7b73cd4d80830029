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

// Package cmd provides site command functionality for the host-ops CLI
package cmd

import (
	"github.com/spf13/cobra"
)

// SiteCommand groups the site subcommands.
type SiteCommand struct{}

// NewSiteCommand creates a new SiteCommand.
func NewSiteCommand() *SiteCommand {
	return &SiteCommand{}
}

// GetCobraCommand returns the cobra command for site operations.
func (c *SiteCommand) GetCobraCommand() *cobra.Command {
	siteCmd := &cobra.Command{
		Use:   "site",
		Short: "Manage discovered vhost sites",
	}

	siteCmd.AddCommand(
		NewSiteListCommand().GetCobraCommand(),
		NewSiteCreateCommand().GetCobraCommand(),
		NewSiteUpdateCommand().GetCobraCommand(),
	)

	return siteCmd
}
