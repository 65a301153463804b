package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contratos/fields"
	"contratos/loader"
)

var fieldsFeed string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show how each feed's header columns bind to fields",
	Long: `Download each configured feed and report, per field, which header column it is
bound to and whether the binding came from an alias or a keyword.

Fields without a binding always resolve to an empty value. Columns no field uses
are listed too, which makes header spelling changes (for example a dropped accent)
easy to spot. Decode warnings of the feed are printed at the end.`,
	Example: `
  # Diagnose every configured feed
  contratos fields

  # Only the payments feed
  contratos fields --feed payments
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		names := []string{loader.FeedContracts, loader.FeedPayments}
		if strings.TrimSpace(fieldsFeed) != "" {
			names = []string{strings.TrimSpace(fieldsFeed)}
		}

		ctx := commandContext(cmd)
		for i, name := range names {
			feed, err := feedByName(rt.feeds, name)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Println()
			}
			if !feed.Enabled() {
				fmt.Printf("Feed %s: not configured\n", name)
				continue
			}

			status, _ := rt.service.LoadRecords(ctx, feed)
			if !status.Available() {
				fmt.Printf("Feed %s: %s\n", name, loader.UnavailableMessage)
				rt.logger.Debug("feed failed", zap.String("feed", name), zap.Error(status.Err))
				continue
			}
			printFieldReport(os.Stdout, rt.resolver, status, feedFields(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().StringVar(&fieldsFeed, "feed", "", "Only diagnose one feed: contracts|payments")
}

func feedFields(name string) []fields.Field {
	if name == loader.FeedPayments {
		return fields.PaymentFields()
	}
	return fields.ContractFields()
}

func printFieldReport(w io.Writer, resolver *fields.Resolver, status loader.FeedStatus, list []fields.Field) {
	fmt.Fprintf(w, "Feed %s: source=%s rows=%d columns=%d\n", status.Name, status.Source, status.Rows, len(status.Header))

	bound := 0
	for _, binding := range resolver.Explain(status.Header, list) {
		if !binding.Bound() {
			fmt.Fprintf(w, "  %-20s -> (unbound)\n", binding.Field)
			continue
		}
		bound++
		fmt.Fprintf(w, "  %-20s -> %q (%s)\n", binding.Field, binding.Column, binding.Via)
	}

	unbound := resolver.UnboundColumns(status.Header, list)
	if len(unbound) > 0 {
		fmt.Fprintln(w, "Unused columns:")
		for _, column := range unbound {
			fmt.Fprintf(w, "  %q\n", column)
		}
	}

	if len(status.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range status.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}

	fmt.Fprintf(w, "Bound fields: %d/%d, Unused columns: %d, Warnings: %d\n", bound, len(list), len(unbound), len(status.Warnings))
}
