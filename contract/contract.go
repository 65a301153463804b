// Package contract holds the resolved, display-ready view of contract and
// payment rows.
package contract

import (
	"strconv"
	"strings"
	"time"

	"contratos/fields"
	"contratos/internal/timeutil"
	"contratos/tabular"
)

// Placeholder is shown wherever a field has no value.
const Placeholder = "—"

const untitledCreditor = "Credor não informado"

// ExpiryWarningDays is the threshold below which a contract is flagged as
// close to expiry.
const ExpiryWarningDays = 30

// Contract is one row of the contracts spreadsheet with every semantic field
// resolved. Absent values are empty strings.
type Contract struct {
	RowNumber           int    `json:"row"`
	Creditor            string `json:"creditor"`
	ContractNumber      string `json:"contractNumber"`
	Executive           string `json:"executive"`
	Manager             string `json:"manager"`
	ValidityStart       string `json:"validityStart"`
	ValidityEnd         string `json:"validityEnd"`
	TotalValue          string `json:"totalValue"`
	MonthlyValue        string `json:"monthlyValue"`
	CurrentTerm         string `json:"currentTerm"`
	DaysToExpiry        string `json:"daysToExpiry"`
	ValidityStatus      string `json:"validityStatus"`
	MostRecent          string `json:"mostRecent"`
	SEINumber           string `json:"seiNumber"`
	Object              string `json:"object"`
	AmendmentInProgress string `json:"amendmentInProgress"`
}

// Payment is one row of the payments spreadsheet.
type Payment struct {
	RowNumber        int    `json:"row"`
	Creditor         string `json:"creditor"`
	ContractNumber   string `json:"contractNumber"`
	PaymentDate      string `json:"paymentDate"`
	PaidAmount       string `json:"paidAmount"`
	CommitmentNumber string `json:"commitmentNumber"`
	InvoiceNumber    string `json:"invoiceNumber"`
	SEINumber        string `json:"seiNumber"`
	Executive        string `json:"executive"`
}

func FromRecord(resolver *fields.Resolver, record tabular.Record) Contract {
	get := func(field fields.Field) string { return resolver.Resolve(record, field) }
	return Contract{
		RowNumber:           record.RowNumber,
		Creditor:            get(fields.Creditor),
		ContractNumber:      get(fields.ContractNumber),
		Executive:           get(fields.Executive),
		Manager:             get(fields.Manager),
		ValidityStart:       get(fields.ValidityStart),
		ValidityEnd:         get(fields.ValidityEnd),
		TotalValue:          get(fields.TotalValue),
		MonthlyValue:        get(fields.MonthlyValue),
		CurrentTerm:         get(fields.CurrentTerm),
		DaysToExpiry:        get(fields.DaysToExpiry),
		ValidityStatus:      get(fields.ValidityStatus),
		MostRecent:          get(fields.MostRecent),
		SEINumber:           get(fields.SEINumber),
		Object:              get(fields.Object),
		AmendmentInProgress: get(fields.AmendmentInProgress),
	}
}

func PaymentFromRecord(resolver *fields.Resolver, record tabular.Record) Payment {
	get := func(field fields.Field) string { return resolver.Resolve(record, field) }
	return Payment{
		RowNumber:        record.RowNumber,
		Creditor:         get(fields.Creditor),
		ContractNumber:   get(fields.ContractNumber),
		PaymentDate:      get(fields.PaymentDate),
		PaidAmount:       get(fields.PaidAmount),
		CommitmentNumber: get(fields.CommitmentNumber),
		InvoiceNumber:    get(fields.InvoiceNumber),
		SEINumber:        get(fields.SEINumber),
		Executive:        get(fields.Executive),
	}
}

func MapContracts(resolver *fields.Resolver, records []tabular.Record) []Contract {
	out := make([]Contract, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(resolver, record))
	}
	return out
}

func MapPayments(resolver *fields.Resolver, records []tabular.Record) []Payment {
	out := make([]Payment, 0, len(records))
	for _, record := range records {
		out = append(out, PaymentFromRecord(resolver, record))
	}
	return out
}

// Display returns value, or the placeholder when value is empty.
func Display(value string) string {
	if strings.TrimSpace(value) == "" {
		return Placeholder
	}
	return value
}

func (c Contract) Title() string {
	if c.Creditor == "" {
		return untitledCreditor
	}
	return c.Creditor
}

// IsCurrent reports whether the validity status reads VIGENTE.
func (c Contract) IsCurrent() bool {
	return strings.EqualFold(c.ValidityStatus, "VIGENTE")
}

func (c Contract) IsMostRecent() bool {
	return isYes(c.MostRecent)
}

func (c Contract) HasAmendmentInProgress() bool {
	return isYes(c.AmendmentInProgress)
}

// Days parses the days-to-expiry column. The second result is false when the
// column is empty or not a number.
func (c Contract) Days() (int, bool) {
	days, err := strconv.Atoi(strings.TrimSpace(c.DaysToExpiry))
	if err != nil {
		return 0, false
	}
	return days, true
}

// ExpiresSoon reports whether the contract has fewer than ExpiryWarningDays left.
func (c Contract) ExpiresSoon() bool {
	days, ok := c.Days()
	return ok && days < ExpiryWarningDays
}

// Date parses the payment date. The second result is false when the column
// is empty or uses an unknown format.
func (p Payment) Date() (time.Time, bool) {
	parsed, err := timeutil.ParseDate(p.PaymentDate)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func isYes(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sim", "s", "yes", "x":
		return true
	default:
		return false
	}
}

// Value returns the resolved value of field, or "" for fields a contract
// does not carry.
func (c Contract) Value(field fields.Field) string {
	switch field {
	case fields.Creditor:
		return c.Creditor
	case fields.ContractNumber:
		return c.ContractNumber
	case fields.Executive:
		return c.Executive
	case fields.Manager:
		return c.Manager
	case fields.ValidityStart:
		return c.ValidityStart
	case fields.ValidityEnd:
		return c.ValidityEnd
	case fields.TotalValue:
		return c.TotalValue
	case fields.MonthlyValue:
		return c.MonthlyValue
	case fields.CurrentTerm:
		return c.CurrentTerm
	case fields.DaysToExpiry:
		return c.DaysToExpiry
	case fields.ValidityStatus:
		return c.ValidityStatus
	case fields.MostRecent:
		return c.MostRecent
	case fields.SEINumber:
		return c.SEINumber
	case fields.Object:
		return c.Object
	case fields.AmendmentInProgress:
		return c.AmendmentInProgress
	default:
		return ""
	}
}

func (p Payment) Value(field fields.Field) string {
	switch field {
	case fields.Creditor:
		return p.Creditor
	case fields.ContractNumber:
		return p.ContractNumber
	case fields.PaymentDate:
		return p.PaymentDate
	case fields.PaidAmount:
		return p.PaidAmount
	case fields.CommitmentNumber:
		return p.CommitmentNumber
	case fields.InvoiceNumber:
		return p.InvoiceNumber
	case fields.SEINumber:
		return p.SEINumber
	case fields.Executive:
		return p.Executive
	default:
		return ""
	}
}
