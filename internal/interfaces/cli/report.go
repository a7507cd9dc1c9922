package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BillWilson/pat-checker/internal/application/reporting"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect stored infringement reports",
	}
	cmd.AddCommand(newReportListCmd())
	return cmd
}

func newReportListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cliCtx.Backend.Reports(cmd.Context())
			if err != nil {
				return err
			}
			out, err := svc.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportPage{out})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	return cmd
}

// reportPage renders a listing.  JSON output is the same array the HTTP API
// returns.
type reportPage struct {
	*reporting.ListOutput
}

func (p reportPage) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range p.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (p reportPage) TableHeaders() []string {
	return []string{"ID", "PATENT", "COMPANY", "DATE", "RISK"}
}

func (p reportPage) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Reports))
	for _, r := range p.Reports {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.PatentID,
			r.CompanyName,
			r.AnalysisDate(),
			overallRisk(r.Result),
		})
	}
	return rows
}

func (p reportPage) String() string {
	return FormatTable(p.TableHeaders(), p.TableRows()) +
		fmt.Sprintf("page %d of %d (%d reports)", p.Page, p.TotalPages(), p.Total)
}

const maxRiskWidth = 48

// overallRisk pulls the risk assessment out of a stored result, shortened for
// a table cell.  "-" when absent.
func overallRisk(result json.RawMessage) string {
	var v struct {
		Risk string `json:"overall_risk_assessment"`
	}
	if err := json.Unmarshal(result, &v); err != nil || v.Risk == "" {
		return "-"
	}
	return truncate(v.Risk, maxRiskWidth)
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if r := []rune(s); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}
