// Package cmd provides CLI commands for the pgtidy tool.
//
// # Available Commands
//
//   - reorganize: Regroup a consolidated script into dependency-ordered sections
//   - patch: Guard create policy statements in a fixed list of migrations
//   - fix: Make every policy migration in a directory idempotent
//   - classify: Show the category assigned to each statement of a script
//   - rehash: Regenerate or verify the migrations sum file
//
// # Command Structure
//
// Each command is a function returning a *cli.Command, following the
// urfave/cli/v3 pattern. Commands receive the project *config.Config through fx
// and are collected into the "commands" value group by Module.
//
// # Global Options
//
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --help, -h: Display command help
//   - --version: Display version information
//
// # Example Usage
//
//	pgtidy reorganize                         # APLICAR_NO_DASHBOARD.sql -> APLICAR_NO_DASHBOARD_FINAL.sql
//	pgtidy reorganize dump.sql --order legacy # Legacy section order
//	pgtidy patch                              # Guard the configured migrations
//	pgtidy fix supabase/migrations            # Guard every migration in a directory
//	pgtidy classify dump.sql                  # line<TAB>category<TAB>first line
//	pgtidy rehash --check                     # Fail if migrations changed since the last rehash
package cmd
