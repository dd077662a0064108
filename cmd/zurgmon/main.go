// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autobrr/zurgmon/internal/buildinfo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "zurgmon",
		Short:         "Monitor a zurg instance and trigger repairs for broken torrents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// running without a subcommand starts the monitor loop
			return runMonitor(cmd, false)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to configuration file or directory")
	flags.String("zurg-url", "", "Base URL of the zurg instance")
	flags.String("username", "", "Username for zurg basic auth")
	flags.String("password", "", "Password for zurg basic auth")
	flags.Int("check-interval", 0, "Minutes between checks")
	flags.String("log-file", "", "Path to the log file")
	flags.Int("rate-limit", 0, "Requests before rate limit backoff")
	flags.Bool("verbose", false, "Show info level output on the console")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("trace", false, "Enable trace logging (implies debug)")
	flags.Bool("dry-run", false, "Log repairs without triggering them")

	rootCmd.AddCommand(RunCommand())
	rootCmd.AddCommand(CheckCommand())
	rootCmd.AddCommand(VersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func VersionCommand() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				out, err := buildinfo.JSON()
				if err != nil {
					cmd.PrintErrf("Error: %v\n", err)
					return
				}
				cmd.Println(string(out))
				return
			}
			cmd.Println(buildinfo.String())
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print version information as JSON")

	return cmd
}
