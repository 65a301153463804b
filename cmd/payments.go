package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"contratos/contract"
	"contratos/fields"
	"contratos/loader"
	"contratos/search"
)

var paymentsMonth string

var paymentsCmd = &cobra.Command{
	Use:   "payments [term]",
	Short: "Search payments by term and/or month",
	Long: `Download the payments feed and print the payments matching the term and month.

The term is matched against creditor, contract number, commitment number,
invoice number and SEI process number. The month accepts YYYY-MM or MM/YYYY.
At least one of term or --month must be given.`,
	Example: `
  # Payments of one contract
  contratos payments 2024-001

  # All payments of March 2025
  contratos payments --month 2025-03

  # Payments of a creditor in one month
  contratos payments acme --month 03/2025
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := search.Query{Month: paymentsMonth}
		if len(args) == 1 {
			query.Term = args[0]
		}
		if err := validatePaymentsQuery(query); err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.requireFeed(loader.FeedPayments); err != nil {
			return err
		}

		result := rt.load(commandContext(cmd), loader.FeedPayments)
		if status, ok := result.Feed(loader.FeedPayments); !ok || !status.Available() {
			return errors.New(loader.UnavailableMessage)
		}

		matches, err := search.Payments(result.Payments, query)
		if err != nil {
			return err
		}
		printPaymentCards(os.Stdout, matches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paymentsCmd)

	paymentsCmd.Flags().StringVarP(&paymentsMonth, "month", "m", "", "Restrict to one month, format YYYY-MM or MM/YYYY")
}

// validatePaymentsQuery rejects queries that cannot match before any feed is
// downloaded.
func validatePaymentsQuery(query search.Query) error {
	if query.IsEmpty() {
		return fmt.Errorf("provide a search term or --month")
	}
	return query.Validate()
}

func printPaymentCards(w io.Writer, payments []contract.Payment) {
	if len(payments) == 0 {
		fmt.Fprintln(w, search.EmptyMessage)
		return
	}

	var total int64
	for i, p := range payments {
		if i > 0 {
			fmt.Fprintln(w)
		}
		for _, field := range fields.PaymentFields() {
			fmt.Fprintf(w, "%s: %s\n", fields.Label(field), contract.Display(p.Value(field)))
		}
		if cents, ok := p.Amount(); ok {
			total += cents
		}
	}
	fmt.Fprintf(w, "\nResults: %d, Total: R$ %s\n", len(payments), contract.FormatAmount(total))
}
