package fields

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"contratos/tabular"
)

func record(columns []string, values ...string) tabular.Record {
	return tabular.NewRecord(2, columns, values)
}

func TestResolve_AliasPriority(t *testing.T) {
	t.Parallel()

	rec := record([]string{"CREDOR", "ENTIDADE"}, "B", "A")
	if got := Resolve(rec, Creditor); got != "A" {
		t.Fatalf("Resolve(creditor) = %q, want %q", got, "A")
	}
}

func TestResolve_SkipsBlankAliasValues(t *testing.T) {
	t.Parallel()

	rec := record([]string{"ENTIDADE", "CREDOR"}, "   ", " B ")
	if got := Resolve(rec, Creditor); got != "B" {
		t.Fatalf("Resolve(creditor) = %q, want %q", got, "B")
	}
}

func TestResolve_MissingAliasesYieldEmpty(t *testing.T) {
	t.Parallel()

	rec := record([]string{"OUTRA COLUNA"}, "x")
	for _, field := range ContractFields() {
		if got := Resolve(rec, field); got != "" {
			t.Fatalf("Resolve(%s) = %q, want empty", field, got)
		}
	}
	if got := Resolve(rec, Field("unknown")); got != "" {
		t.Fatalf("unknown field resolved to %q", got)
	}
}

func TestResolve_IsAccentSensitive(t *testing.T) {
	t.Parallel()

	// "STATUS DA VIGENCIA" without the accent is not a known alias.
	rec := record([]string{"STATUS DA VIGENCIA"}, "VIGENTE")
	if got := Resolve(rec, ValidityStatus); got != "" {
		t.Fatalf("expected accent variant to stay unresolved, got %q", got)
	}
}

func TestResolve_IsPure(t *testing.T) {
	t.Parallel()

	rec := record([]string{"ENTIDADE", "Nº DO CONTRATO"}, "ACME", "2024-001")
	first := Resolve(rec, ContractNumber)
	second := Resolve(rec, ContractNumber)
	if first != second || first != "2024-001" {
		t.Fatalf("expected stable result, got %q then %q", first, second)
	}
}

func TestResolve_FallsBackToKeywords(t *testing.T) {
	t.Parallel()

	rec := record(
		[]string{"ENTIDADE", "SECRETARIA EXECUTIVA RESPONSÁVEL PELA GESTÃO DO CONTRATO"},
		"ACME", " SEAFI ",
	)
	if got := Resolve(rec, Executive); got != "SEAFI" {
		t.Fatalf("Resolve(executive) = %q, want %q", got, "SEAFI")
	}
}

func TestResolveByKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		columns  []string
		values   []string
		keywords []string
		want     string
	}{
		{
			name:     "first column in stored order wins",
			columns:  []string{"SECRETARIA EXECUTIVA GERENCIADORA", "OUTRA SECRETARIA EXECUTIVA"},
			values:   []string{"X", "Y"},
			keywords: []string{"secretaria executiva"},
			want:     "X",
		},
		{
			name:     "order follows header, not keyword list",
			columns:  []string{"GESTOR DO CONTRATO", "FISCAL DO CONTRATO"},
			values:   []string{"G", "F"},
			keywords: []string{"fiscal", "gestor"},
			want:     "G",
		},
		{
			name:     "keywords are lowercased",
			columns:  []string{"Secretaria Executiva"},
			values:   []string{" SEGES "},
			keywords: []string{"SECRETARIA EXECUTIVA"},
			want:     "SEGES",
		},
		{
			name:     "no match",
			columns:  []string{"ENTIDADE"},
			values:   []string{"ACME"},
			keywords: []string{"secretaria"},
			want:     "",
		},
		{
			name:     "no keywords",
			columns:  []string{"ENTIDADE"},
			values:   []string{"ACME"},
			keywords: nil,
			want:     "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveByKeywords(record(tc.columns, tc.values...), tc.keywords)
			if got != tc.want {
				t.Fatalf("ResolveByKeywords = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolve_EndToEndSample(t *testing.T) {
	t.Parallel()

	records := tabular.Decode("ENTIDADE,Nº DO CONTRATO,STATUS DA VIGÊNCIA\n" +
		"ACME LTDA,2024-001,VIGENTE\n" +
		",2024-002,\n")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if got := Resolve(records[0], ValidityStatus); got != "VIGENTE" {
		t.Fatalf("status = %q, want VIGENTE", got)
	}
	if got := Resolve(records[1], Creditor); got != "" {
		t.Fatalf("creditor = %q, want empty", got)
	}
	if got := Resolve(records[1], ContractNumber); got != "2024-002" {
		t.Fatalf("contract number = %q, want 2024-002", got)
	}
}

func TestSchema_OverrideDoesNotTouchDefaults(t *testing.T) {
	t.Parallel()

	custom := DefaultSchema().Override(Creditor, []string{"FORNECEDOR"}, []string{"Razão Social"})
	resolver := NewResolver(custom)

	rec := record([]string{"ENTIDADE", "FORNECEDOR"}, "A", "F")
	if got := resolver.Resolve(rec, Creditor); got != "F" {
		t.Fatalf("custom resolver creditor = %q, want F", got)
	}
	if got := Resolve(rec, Creditor); got != "A" {
		t.Fatalf("default resolver creditor = %q, want A", got)
	}
	if diff := cmp.Diff([]string{"razão social"}, custom.Keywords[Creditor]); diff != "" {
		t.Fatalf("keywords not lowercased (-want +got):\n%s", diff)
	}

	custom.Aliases[Creditor][0] = "MUTATED"
	if got := resolver.Resolve(rec, Creditor); got != "F" {
		t.Fatalf("resolver affected by schema mutation, got %q", got)
	}
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultSchema().Validate(); err != nil {
		t.Fatalf("default schema invalid: %v", err)
	}

	empty := DefaultSchema().Override(Manager, []string{}, nil)
	if err := empty.Validate(); err == nil {
		t.Fatalf("expected error for field without aliases or keywords")
	}

	blank := DefaultSchema().Override(Manager, []string{" "}, nil)
	if err := blank.Validate(); err == nil {
		t.Fatalf("expected error for blank alias")
	}

	upper := Schema{Keywords: map[Field][]string{Executive: {"SECRETARIA"}}}
	if err := upper.Validate(); err == nil {
		t.Fatalf("expected error for uppercase keyword")
	}
}

func TestIsKnown(t *testing.T) {
	t.Parallel()

	if !IsKnown("creditor") || !IsKnown("executive") {
		t.Fatalf("expected built-in fields to be known")
	}
	if IsKnown("Creditor") {
		t.Fatalf("field identifiers are case-sensitive")
	}
}
