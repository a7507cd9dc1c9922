package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/BillWilson/pat-checker/internal/application/ingest"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

type importOptions struct {
	file            string
	continueOnError bool
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load patents or company products from JSON files",
	}
	cmd.AddCommand(
		newImportKindCmd("patents", "Import a JSON array of patent records",
			func(ctx context.Context, b Backend, opts ...ingest.Option) (Importer, error) {
				return b.PatentImporter(ctx, opts...)
			}),
		newImportKindCmd("products", "Import a company products file, embedding each product",
			func(ctx context.Context, b Backend, opts ...ingest.Option) (Importer, error) {
				return b.ProductImporter(ctx, opts...)
			}),
	)
	return cmd
}

type importerFunc func(ctx context.Context, b Backend, opts ...ingest.Option) (Importer, error)

func newImportKindCmd(use, short string, build importerFunc) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, build)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to the JSON file")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "skip failing records instead of stopping")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions, build importerFunc) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "cannot open import file").WithDetail(opts.file)
	}
	defer f.Close()

	importer, err := build(cmd.Context(), cliCtx.Backend,
		ingest.WithContinueOnError(opts.continueOnError),
		ingest.WithProgress(progressPrinter(cmd, cliCtx.Verbose)),
	)
	if err != nil {
		return err
	}

	stats, err := importer.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	return PrintResult(cmd, importSummary(stats))
}

// progressPrinter reports failed records always and every record when
// verbose.
func progressPrinter(cmd *cobra.Command, verbose bool) ingest.ProgressFunc {
	return func(p ingest.Progress) {
		switch {
		case p.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s failed: %v\n", p.Done, p.Total, p.Item, p.Err)
		case verbose:
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", p.Done, p.Total, p.Item)
		}
	}
}

type importSummary ingest.Stats

func (s importSummary) String() string {
	if s.Kind == ingest.KindReembed {
		return fmt.Sprintf("Re-embedded %d of %d products (%d failed) in %s",
			s.Inserted, s.Total, s.Failed, s.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("Imported %d of %d %s records (%d failed) in %s",
		s.Inserted, s.Total, s.Kind, s.Failed, s.Elapsed.Round(time.Millisecond))
}

func (s importSummary) TableHeaders() []string {
	return []string{"RUN", "KIND", "TOTAL", "INSERTED", "FAILED", "ELAPSED"}
}

func (s importSummary) TableRows() [][]string {
	return [][]string{{
		s.RunID,
		s.Kind,
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Inserted),
		strconv.Itoa(s.Failed),
		s.Elapsed.Round(time.Millisecond).String(),
	}}
}
