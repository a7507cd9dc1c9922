package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m Migrator, _ []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m, "migrations applied")
			}),
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m Migrator, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := parsePositive(args[0])
					if err != nil {
						return err
					}
					steps = n
				}
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m, fmt.Sprintf("rolled back %d migration(s)", steps))
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m Migrator, _ []string) error {
				return printVersion(cmd, m, "")
			}),
		},
		&cobra.Command{
			Use:   "force N",
			Short: "Mark version N as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < -1 {
					return errors.Newf(errors.ErrCodeValidation, "invalid version %q", args[0])
				}
				if err := m.Force(v); err != nil {
					return err
				}
				return printVersion(cmd, m, fmt.Sprintf("forced version %d", v))
			}),
		},
	)
	return cmd
}

// withMigrator opens a Migrator for the duration of fn.
func withMigrator(fn func(cmd *cobra.Command, m Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		m, err := cliCtx.Backend.Migrator(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := m.Close(); cerr != nil {
				cliCtx.Logger.Warn("Failed to close migrator", logging.Err(cerr))
			}
		}()
		return fn(cmd, m, args)
	}
}

type migrationVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (v migrationVersion) String() string {
	if v.Dirty {
		return fmt.Sprintf("version %d (dirty)", v.Version)
	}
	return fmt.Sprintf("version %d", v.Version)
}

func (v migrationVersion) TableHeaders() []string { return []string{"VERSION", "DIRTY"} }

func (v migrationVersion) TableRows() [][]string {
	return [][]string{{strconv.FormatUint(uint64(v.Version), 10), strconv.FormatBool(v.Dirty)}}
}

func printVersion(cmd *cobra.Command, m Migrator, done string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if done != "" && !isJSON(cmd) {
		PrintSuccess(cmd, done)
	}
	return PrintResult(cmd, migrationVersion{Version: version, Dirty: dirty})
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "expected a positive integer, got %q", s)
	}
	return n, nil
}
