// Package search filters resolved contracts and payments. The current query
// is passed in explicitly; the package keeps no state.
package search

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"contratos/contract"
	"contratos/internal/timeutil"
)

// EmptyMessage is shown when a query matches nothing.
const EmptyMessage = "Nenhum resultado encontrado para a busca informada."

var ErrInvalidMonth = errors.New("invalid month")

// Query is the view state of a search: a free-text term and an optional
// month (YYYY-MM or MM/YYYY) for payments.
type Query struct {
	Term  string
	Month string
}

func (q Query) normalizedTerm() string {
	return strings.ToLower(strings.TrimSpace(q.Term))
}

func (q Query) IsEmpty() bool {
	return q.normalizedTerm() == "" && strings.TrimSpace(q.Month) == ""
}

// Validate reports a month that is neither YYYY-MM nor MM/YYYY.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Month) == "" {
		return nil
	}
	if _, err := timeutil.ParseMonth(q.Month); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	return nil
}

// Contracts returns the contracts whose creditor, contract number or SEI
// number contains term, ignoring case. An empty term matches nothing.
func Contracts(contracts []contract.Contract, term string) []contract.Contract {
	needle := Query{Term: term}.normalizedTerm()
	out := make([]contract.Contract, 0)
	if needle == "" {
		return out
	}

	for _, c := range contracts {
		if containsAny(needle, c.Creditor, c.ContractNumber, c.SEINumber) {
			out = append(out, c)
		}
	}
	return out
}

// Payments filters payments by term and month. The term is matched against
// creditor, contract, commitment, invoice and SEI numbers. When a month is
// given only payments whose date falls in it are kept; undated payments never
// match a month. An empty query matches nothing.
func Payments(payments []contract.Payment, query Query) ([]contract.Payment, error) {
	out := make([]contract.Payment, 0)
	if query.IsEmpty() {
		return out, nil
	}

	var month time.Time
	hasMonth := strings.TrimSpace(query.Month) != ""
	if hasMonth {
		parsed, err := timeutil.ParseMonth(query.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
		}
		month = parsed
	}

	needle := query.normalizedTerm()
	for _, p := range payments {
		if needle != "" && !containsAny(needle, p.Creditor, p.ContractNumber, p.CommitmentNumber, p.InvoiceNumber, p.SEINumber) {
			continue
		}
		if hasMonth {
			date, ok := p.Date()
			if !ok || !timeutil.SameMonth(date, month) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Months lists the distinct payment months (YYYY-MM), newest first.
func Months(payments []contract.Payment) []string {
	seen := make(map[string]struct{})
	for _, p := range payments {
		if date, ok := p.Date(); ok {
			seen[timeutil.MonthKey(date)] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for month := range seen {
		out = append(out, month)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

func containsAny(needle string, values ...string) bool {
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}
