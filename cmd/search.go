package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"contratos/contract"
	"contratos/fields"
	"contratos/loader"
	"contratos/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search contracts by creditor, contract number or SEI number",
	Long: `Download the contracts feed and print every contract whose creditor,
contract number or SEI process number contains the given term (case-insensitive).

When the feed cannot be downloaded the latest snapshot is used, if one exists.`,
	Example: `
  # Search by creditor
  contratos search "acme"

  # Search by SEI process number
  contratos search 0001234-56.2024
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.requireFeed(loader.FeedContracts); err != nil {
			return err
		}

		result := rt.load(commandContext(cmd), loader.FeedContracts)
		if status, ok := result.Feed(loader.FeedContracts); !ok || !status.Available() {
			return errors.New(loader.UnavailableMessage)
		}

		matches := search.Contracts(result.Contracts, args[0])
		printContractCards(os.Stdout, matches)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func printContractCards(w io.Writer, contracts []contract.Contract) {
	if len(contracts) == 0 {
		fmt.Fprintln(w, search.EmptyMessage)
		return
	}

	for i, c := range contracts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, c.Title())
		fmt.Fprintln(w, strings.Repeat("-", len([]rune(c.Title()))))
		for _, field := range fields.ContractFields() {
			if field == fields.Creditor {
				continue
			}
			fmt.Fprintf(w, "%s: %s\n", fields.Label(field), contract.Display(c.Value(field)))
		}

		var flags []string
		if c.IsMostRecent() {
			flags = append(flags, "mais recente")
		}
		if c.HasAmendmentInProgress() {
			flags = append(flags, "TA em andamento")
		}
		if c.ExpiresSoon() {
			flags = append(flags, "vence em breve")
		}
		if len(flags) > 0 {
			fmt.Fprintf(w, "[%s]\n", strings.Join(flags, ", "))
		}
	}
	fmt.Fprintf(w, "\nResults: %d\n", len(contracts))
}
