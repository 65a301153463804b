package fields

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Field identifies a semantic value independent of how a given spreadsheet
// happens to label its column.
type Field string

const (
	Creditor            Field = "creditor"
	ContractNumber      Field = "contractNumber"
	Executive           Field = "executive"
	Manager             Field = "manager"
	ValidityStart       Field = "validityStart"
	ValidityEnd         Field = "validityEnd"
	TotalValue          Field = "totalValue"
	MonthlyValue        Field = "monthlyValue"
	CurrentTerm         Field = "currentTerm"
	DaysToExpiry        Field = "daysToExpiry"
	ValidityStatus      Field = "validityStatus"
	MostRecent          Field = "mostRecent"
	SEINumber           Field = "seiNumber"
	Object              Field = "object"
	AmendmentInProgress Field = "amendmentInProgress"

	PaymentDate      Field = "paymentDate"
	PaidAmount       Field = "paidAmount"
	CommitmentNumber Field = "commitmentNumber"
	InvoiceNumber    Field = "invoiceNumber"
)

// ContractFields lists the fields shown for a contract, in display order.
func ContractFields() []Field {
	return []Field{
		Creditor, ContractNumber, Executive, Manager, ValidityStart, ValidityEnd,
		TotalValue, MonthlyValue, CurrentTerm, DaysToExpiry, ValidityStatus,
		MostRecent, SEINumber, Object, AmendmentInProgress,
	}
}

// PaymentFields lists the fields shown for a payment, in display order.
func PaymentFields() []Field {
	return []Field{
		Creditor, ContractNumber, PaymentDate, PaidAmount, CommitmentNumber,
		InvoiceNumber, SEINumber, Executive,
	}
}

// Schema binds semantic fields to spreadsheet columns. Aliases are exact
// column names tried in order; keywords are lowercase fragments matched
// against lowercased column names when no alias yields a value.
type Schema struct {
	Aliases  map[Field][]string
	Keywords map[Field][]string
}

// The built-in tables reflect the header spellings seen in the published
// spreadsheets over time. They are never modified; DefaultSchema hands out copies.
var (
	defaultAliases = map[Field][]string{
		Creditor:            {"ENTIDADE", "CREDOR", "EMPRESA CONTRATADA"},
		ContractNumber:      {"Nº DO CONTRATO", "NUMERO DO CONTRATO"},
		Manager:             {"GESTOR", "FISCAL"},
		ValidityStart:       {"INÍCIO DA VIGÊNCIA DO INSTRUMENTO", "INICIO DA VIGÊNCIA DO INSTRUMENTO"},
		ValidityEnd:         {"FIM DA VIGÊNCIA DO INSTRUMENTO", "FIM DA VIGENCIA DO INSTRUMENTO"},
		TotalValue:          {"VALOR ANUAL (R$)", "VALOR GLOBAL (R$)"},
		MonthlyValue:        {"VALOR MENSAL (R$)", "VALOR MENSAL ESTIMADO (R$)"},
		CurrentTerm:         {"TERMO ATUAL"},
		DaysToExpiry:        {"DIAS"},
		ValidityStatus:      {"STATUS DA VIGÊNCIA"},
		MostRecent:          {"É O MAIS RECENTE?", "É MAIS A MAIS RECENTE?"},
		SEINumber:           {"Nº DO SEI", "NUMERO DO SEI"},
		Object:              {"OBJETO RESUMIDO", "OBJETO"},
		AmendmentInProgress: {"TA EM ANDAMENTO?"},

		PaymentDate:      {"DATA DO PAGAMENTO", "DATA PAGAMENTO", "DATA"},
		PaidAmount:       {"VALOR PAGO (R$)", "VALOR PAGO", "VALOR"},
		CommitmentNumber: {"Nº DO EMPENHO", "NUMERO DO EMPENHO", "EMPENHO"},
		InvoiceNumber:    {"Nº DA NOTA FISCAL", "NUMERO DA NOTA FISCAL", "NOTA FISCAL"},
	}

	defaultKeywords = map[Field][]string{
		Executive: {"secretaria executiva"},
	}
)

// DefaultSchema returns a copy of the built-in alias and keyword tables.
func DefaultSchema() Schema {
	return Schema{
		Aliases:  cloneTable(defaultAliases),
		Keywords: cloneTable(defaultKeywords),
	}
}

// Override replaces the alias and/or keyword list of individual fields and
// returns the result as a new schema. Nil lists leave the current entry alone.
func (s Schema) Override(field Field, aliases, keywords []string) Schema {
	out := s.clone()
	if aliases != nil {
		out.Aliases[field] = slices.Clone(aliases)
	}
	if keywords != nil {
		lowered := make([]string, len(keywords))
		for i, keyword := range keywords {
			lowered[i] = strings.ToLower(keyword)
		}
		out.Keywords[field] = lowered
	}
	return out
}

// Fields returns every field the schema knows, sorted by name.
func (s Schema) Fields() []Field {
	set := make(map[Field]struct{}, len(s.Aliases)+len(s.Keywords))
	for field := range s.Aliases {
		set[field] = struct{}{}
	}
	for field := range s.Keywords {
		set[field] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Validate checks that every field can be bound to something and that the
// tables hold no blank entries.
func (s Schema) Validate() error {
	for _, field := range s.Fields() {
		aliases := s.Aliases[field]
		keywords := s.Keywords[field]
		if len(aliases) == 0 && len(keywords) == 0 {
			return fmt.Errorf("field %s has neither aliases nor keywords", field)
		}
		for i, alias := range aliases {
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("field %s: alias %d is empty", field, i)
			}
		}
		for i, keyword := range keywords {
			if strings.TrimSpace(keyword) == "" {
				return fmt.Errorf("field %s: keyword %d is empty", field, i)
			}
			if keyword != strings.ToLower(keyword) {
				return fmt.Errorf("field %s: keyword %q must be lowercase", field, keyword)
			}
		}
	}
	return nil
}

// IsKnown reports whether name is one of the built-in field identifiers.
func IsKnown(name string) bool {
	field := Field(name)
	_, alias := defaultAliases[field]
	_, keyword := defaultKeywords[field]
	return alias || keyword
}

func (s Schema) clone() Schema {
	return Schema{Aliases: cloneTable(s.Aliases), Keywords: cloneTable(s.Keywords)}
}

func cloneTable(in map[Field][]string) map[Field][]string {
	out := make(map[Field][]string, len(in))
	for field, values := range in {
		out[field] = slices.Clone(values)
	}
	return out
}
