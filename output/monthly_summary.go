package output

import (
	"slices"
	"strconv"

	"contratos/contract"
	"contratos/internal/timeutil"
)

// MonthlySummary aggregates the payments made in one month.
type MonthlySummary struct {
	Month        string
	PaymentCount int
	Creditors    int
	TotalCents   int64
	// Unpriced counts payments whose amount could not be parsed.
	Unpriced int
}

// BuildMonthlySummaries groups payments by month, oldest first. Payments
// without a readable date are left out.
func BuildMonthlySummaries(payments []contract.Payment) []MonthlySummary {
	if len(payments) == 0 {
		return []MonthlySummary{}
	}

	byMonth := make(map[string][]contract.Payment)
	for _, payment := range payments {
		date, ok := payment.Date()
		if !ok {
			continue
		}
		month := timeutil.MonthKey(date)
		byMonth[month] = append(byMonth[month], payment)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	slices.Sort(months)

	summaries := make([]MonthlySummary, 0, len(months))
	for _, month := range months {
		summaries = append(summaries, summarizeMonth(month, byMonth[month]))
	}
	return summaries
}

func summarizeMonth(month string, payments []contract.Payment) MonthlySummary {
	summary := MonthlySummary{Month: month, PaymentCount: len(payments)}
	creditors := make(map[string]struct{}, len(payments))
	for _, payment := range payments {
		if payment.Creditor != "" {
			creditors[payment.Creditor] = struct{}{}
		}
		cents, ok := payment.Amount()
		if !ok {
			summary.Unpriced++
			continue
		}
		summary.TotalCents += cents
	}
	summary.Creditors = len(creditors)
	return summary
}

func SummaryTable(summaries []MonthlySummary) Table {
	table := Table{
		Sheet:   "Resumo",
		Headers: []string{"Mês", "Pagamentos", "Credores", "Total Pago (R$)", "Sem Valor"},
		Rows:    make([][]string, 0, len(summaries)),
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, []string{
			summary.Month,
			strconv.Itoa(summary.PaymentCount),
			strconv.Itoa(summary.Creditors),
			contract.FormatAmount(summary.TotalCents),
			strconv.Itoa(summary.Unpriced),
		})
	}
	return table
}
