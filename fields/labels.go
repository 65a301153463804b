package fields

var labels = map[Field]string{
	Creditor:            "Credor",
	ContractNumber:      "Nº do Contrato",
	Executive:           "Secretaria Executiva",
	Manager:             "Gestor",
	ValidityStart:       "Início da Vigência",
	ValidityEnd:         "Fim da Vigência",
	TotalValue:          "Valor Anual",
	MonthlyValue:        "Valor Mensal",
	CurrentTerm:         "Termo Atual",
	DaysToExpiry:        "Dias p/ Vencimento",
	ValidityStatus:      "Status da Vigência",
	MostRecent:          "Mais Recente",
	SEINumber:           "Nº do SEI",
	Object:              "Objeto Resumido",
	AmendmentInProgress: "TA em Andamento",
	PaymentDate:         "Data do Pagamento",
	PaidAmount:          "Valor Pago",
	CommitmentNumber:    "Nº do Empenho",
	InvoiceNumber:       "Nº da Nota Fiscal",
}

// Label returns the display label of field, or its identifier when it has none.
func Label(field Field) string {
	if label, ok := labels[field]; ok {
		return label
	}
	return string(field)
}
