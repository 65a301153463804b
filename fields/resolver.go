package fields

import (
	"strings"

	"contratos/tabular"
)

// Resolver looks up semantic field values in decoded records. It holds a
// private copy of its schema and is safe for concurrent use.
type Resolver struct {
	schema Schema
}

func NewResolver(schema Schema) *Resolver {
	return &Resolver{schema: schema.clone()}
}

var defaultResolver = NewResolver(DefaultSchema())

// Default returns the resolver backed by the built-in schema.
func Default() *Resolver {
	return defaultResolver
}

// Resolve returns the value of field in record using the built-in schema.
func Resolve(record tabular.Record, field Field) string {
	return defaultResolver.Resolve(record, field)
}

// ResolveByKeywords returns the trimmed value of the first column, in header
// order, whose lowercased name contains any of keywords.
func ResolveByKeywords(record tabular.Record, keywords []string) string {
	value, _ := matchKeywords(record, keywords)
	return value
}

// Resolve tries the field's aliases in priority order and returns the first
// non-blank value. Alias matching is exact: case and accents must match the
// header. When no alias yields a value the field's keywords are tried.
// Absent data always resolves to "".
func (r *Resolver) Resolve(record tabular.Record, field Field) string {
	value, _ := r.resolve(record, field)
	return value
}

// ResolveByKeywords is the package-level ResolveByKeywords; it ignores the schema.
func (r *Resolver) ResolveByKeywords(record tabular.Record, keywords []string) string {
	return ResolveByKeywords(record, keywords)
}

// Schema returns a copy of the resolver's schema.
func (r *Resolver) Schema() Schema {
	return r.schema.clone()
}

func (r *Resolver) resolve(record tabular.Record, field Field) (string, binding) {
	for _, alias := range r.schema.Aliases[field] {
		value, ok := record.Lookup(alias)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed, binding{column: alias, via: ViaAlias}
		}
	}

	if keywords := r.schema.Keywords[field]; len(keywords) > 0 {
		if value, column := matchKeywords(record, keywords); column != "" {
			return value, binding{column: column, via: ViaKeyword}
		}
	}
	return "", binding{}
}

type binding struct {
	column string
	via    Via
}

func matchKeywords(record tabular.Record, keywords []string) (string, string) {
	if len(keywords) == 0 {
		return "", ""
	}
	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(keyword); keyword != "" {
			lowered = append(lowered, keyword)
		}
	}

	for column, value := range record.All() {
		name := strings.ToLower(column)
		for _, keyword := range lowered {
			if strings.Contains(name, keyword) {
				return strings.TrimSpace(value), column
			}
		}
	}
	return "", ""
}
