package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contratos/loader"
	"contratos/output"
	"contratos/search"
)

const exportFeedSummary = "summary"

var (
	exportFeed   string
	exportQuery  string
	exportMonth  string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contracts, payments or a monthly payment summary to CSV/Excel",
	Long: `Export resolved rows to CSV or Excel.

Feeds:
- contracts: contracts matching --query (all contracts when --query is empty)
- payments: payments matching --query and --month (all payments when both are empty)
- summary: per-month payment totals of the payments matching --query and --month

Columns use display labels; values are exported as they appear in the feed.
Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export contracts of one creditor to Excel
  contratos export --feed contracts --query acme --output ./contratos.xlsx

  # Export March 2025 payments to CSV
  contratos export --feed payments --month 2025-03 --output ./pagamentos.csv

  # Monthly summary of one contract's payments
  contratos export --feed summary --query 2024-001 --output ./resumo.xlsx

  # Force CSV format independent of extension
  contratos export --feed contracts --format csv --output ./contratos.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = output.DetectFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		feedName := strings.ToLower(strings.TrimSpace(exportFeed))
		if feedName == exportFeedSummary {
			feedName = loader.FeedPayments
		}
		if feedName != loader.FeedContracts && feedName != loader.FeedPayments {
			return fmt.Errorf("unsupported export feed: %s (supported: contracts, payments, summary)", exportFeed)
		}
		if feedName == loader.FeedContracts && strings.TrimSpace(exportMonth) != "" {
			return fmt.Errorf("--month only applies to payments and summary exports")
		}

		query := search.Query{Term: exportQuery, Month: exportMonth}
		if err := query.Validate(); err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.requireFeed(feedName); err != nil {
			return err
		}

		result := rt.load(commandContext(cmd), feedName)
		if status, ok := result.Feed(feedName); !ok || !status.Available() {
			return errors.New(loader.UnavailableMessage)
		}

		mode := strings.ToLower(strings.TrimSpace(exportFeed))

		switch mode {
		case loader.FeedContracts:
			contracts := result.Contracts
			if !query.IsEmpty() {
				contracts = search.Contracts(contracts, query.Term)
			}
			if err := writer.Write(exportOutput, output.ContractTable(contracts)); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Feed: contracts, Format: %s, File: %s\n", len(contracts), format, exportOutput)
		default:
			payments := result.Payments
			if !query.IsEmpty() {
				payments, err = search.Payments(payments, query)
				if err != nil {
					return err
				}
			}
			if mode == exportFeedSummary {
				summaries := output.BuildMonthlySummaries(payments)
				if err := writer.Write(exportOutput, output.SummaryTable(summaries)); err != nil {
					return err
				}
				fmt.Printf("Export completed. Months: %d, Feed: summary, Format: %s, File: %s\n", len(summaries), format, exportOutput)
				return nil
			}
			if err := writer.Write(exportOutput, output.PaymentTable(payments)); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Feed: payments, Format: %s, File: %s\n", len(payments), format, exportOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFeed, "feed", loader.FeedContracts, "What to export: contracts|payments|summary")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "Search term to filter rows")
	exportCmd.Flags().StringVarP(&exportMonth, "month", "m", "", "Payment month, format YYYY-MM or MM/YYYY")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = exportCmd.MarkFlagRequired("output")
}
