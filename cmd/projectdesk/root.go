// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the ProjectDesk CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projectdesk",
		Short: "ProjectDesk - a multi-tenant project tracker",
		Long: `ProjectDesk is a multi-tenant project tracking backend with
email/password accounts, cookie sessions, and an owner-scoped HTTP API
backed by PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
