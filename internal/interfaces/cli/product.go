package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BillWilson/pat-checker/internal/application/ingest"
	"github.com/BillWilson/pat-checker/internal/domain/product"
)

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Inspect and maintain stored company products",
	}
	cmd.AddCommand(newProductListCmd(), newProductReembedCmd())
	return cmd
}

func newProductListCmd() *cobra.Command {
	var company string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a company's products in import order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			catalog, err := cliCtx.Backend.Products(cmd.Context())
			if err != nil {
				return err
			}
			products, err := catalog.ListByCompany(cmd.Context(), strings.TrimSpace(company))
			if err != nil {
				return err
			}
			return PrintResult(cmd, productList(products))
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company name as stored with its products")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newProductReembedCmd() *cobra.Command {
	var (
		company         string
		continueOnError bool
	)
	cmd := &cobra.Command{
		Use:   "reembed",
		Short: "Recompute the embeddings of a company's products",
		Long: "Embeds every stored product of the company again and replaces its vector.\n" +
			"Run it after switching the embedding model.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			re, err := cliCtx.Backend.ProductReembedder(cmd.Context(),
				ingest.WithContinueOnError(continueOnError),
				ingest.WithProgress(progressPrinter(cmd, cliCtx.Verbose)),
			)
			if err != nil {
				return err
			}
			stats, err := re.Reembed(cmd.Context(), company)
			if err != nil {
				return err
			}
			return PrintResult(cmd, importSummary(stats))
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "company whose products are re-embedded")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "skip failing products instead of stopping")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

const maxDescriptionWidth = 60

// productList renders products.  JSON output is the product array.
type productList []*product.Product

func (l productList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]*product.Product(l))
}

func (l productList) TableHeaders() []string {
	return []string{"ID", "NAME", "DESCRIPTION", "CREATED"}
}

func (l productList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			truncate(strings.Join(strings.Fields(p.Description), " "), maxDescriptionWidth),
			p.CreatedAt.Format("2006-01-02"),
		})
	}
	return rows
}

func (l productList) String() string {
	return FormatTable(l.TableHeaders(), l.TableRows()) + strconv.Itoa(len(l)) + " products"
}
