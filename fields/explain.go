package fields

import "strings"

// Via tells how a field was bound to a column.
type Via string

const (
	ViaNone    Via = ""
	ViaAlias   Via = "alias"
	ViaKeyword Via = "keyword"
)

// Binding reports which header column a field maps to.
type Binding struct {
	Field  Field
	Column string
	Via    Via
}

func (b Binding) Bound() bool {
	return b.Via != ViaNone
}

// Explain binds every field of the schema against a header row, ignoring
// values. Unbound fields will always resolve to "" for this feed; this is
// how header spelling drift (for example a missing accent) becomes visible.
func (r *Resolver) Explain(header []string, fields []Field) []Binding {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[column] = struct{}{}
	}

	out := make([]Binding, 0, len(fields))
	for _, field := range fields {
		out = append(out, r.bindHeader(field, header, present))
	}
	return out
}

// UnboundColumns returns the header columns no field in fields is bound to.
func (r *Resolver) UnboundColumns(header []string, fields []Field) []string {
	used := make(map[string]struct{})
	for _, binding := range r.Explain(header, fields) {
		if binding.Bound() {
			used[binding.Column] = struct{}{}
		}
	}

	out := make([]string, 0)
	for _, column := range header {
		if _, ok := used[column]; !ok {
			out = append(out, column)
		}
	}
	return out
}

func (r *Resolver) bindHeader(field Field, header []string, present map[string]struct{}) Binding {
	for _, alias := range r.schema.Aliases[field] {
		if _, ok := present[alias]; ok {
			return Binding{Field: field, Column: alias, Via: ViaAlias}
		}
	}
	for _, column := range header {
		name := strings.ToLower(column)
		for _, keyword := range r.schema.Keywords[field] {
			if keyword != "" && strings.Contains(name, keyword) {
				return Binding{Field: field, Column: column, Via: ViaKeyword}
			}
		}
	}
	return Binding{Field: field}
}
