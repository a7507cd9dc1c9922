package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillWilson/pat-checker/internal/application/infringement"
	"github.com/BillWilson/pat-checker/pkg/errors"
)

type searchOptions struct {
	patentID string
	company  string
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Analyze a patent against a company's products",
		Long: "Runs the infringement analysis for one patent and company and prints the\n" +
			"report as JSON.  A cached report is returned unchanged while it is fresh.",
		Example: "  patcheck search --patent-id US-RE49889-E1 --company \"Walmart Inc.\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.patentID, "patent-id", "", "patent publication number")
	cmd.Flags().StringVar(&opts.company, "company", "", "company name as stored with its products")
	_ = cmd.MarkFlagRequired("patent-id")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc, err := cliCtx.Backend.Analyzer(cmd.Context())
	if err != nil {
		return err
	}

	out, err := svc.Analyze(cmd.Context(), infringement.AnalyzeInput{
		PatentID:    opts.patentID,
		CompanyName: opts.company,
	})
	if err != nil {
		return err
	}
	if cliCtx.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "cached: %t\n", out.Cached)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, out.Body, "", "  "); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "report body is not valid JSON")
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(cmd.OutOrStdout())
	return err
}
