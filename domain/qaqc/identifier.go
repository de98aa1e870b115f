package qaqc

import (
	"strings"

	"soilqc/domain/core"
	"soilqc/internal/errors"
)

// ErrMalformedIdentifier is wrapped by ParseIdentifier when an identifier has no delimiter
var ErrMalformedIdentifier = errors.ValidationError("malformed sample identifier")

// Identifier is a parsed composite sample identifier, e.g. "KS12_3" -> {KS12, 3}
type Identifier struct {
	Field  core.FieldKey
	Sample string
}

// IsDuplicate reports whether id carries the duplicate marker. An empty marker never matches.
func IsDuplicate(id, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(id, marker)
}

// ParseIdentifier splits id on delimiter. The first part is the field; everything after the
// first delimiter is the sample, so "KS12_3_b" parses as {KS12, 3_b}.
func ParseIdentifier(id, delimiter string) (Identifier, error) {
	field, sample, ok := strings.Cut(strings.TrimSpace(id), delimiter)
	if !ok || field == "" {
		return Identifier{}, errors.Wrapf(ErrMalformedIdentifier,
			"identifier %q has fewer than two %q-delimited parts", id, delimiter)
	}
	return Identifier{Field: core.FieldKey(field), Sample: sample}, nil
}

// DropDuplicates removes rows whose identifier column contains marker.
// Rows with an empty identifier are kept.
func DropDuplicates(t *Table, column, marker string) (*Table, error) {
	if err := t.RequireColumns(column); err != nil {
		return nil, err
	}
	return t.Filter(func(r Row) bool {
		return !IsDuplicate(r[column], marker)
	}), nil
}

// SplitIdentifiers returns a copy of t with Field and Sample columns parsed from column.
// Existing Field or Sample columns are never overwritten.
// Empty identifiers get empty Field/Sample and are ignored by grouping downstream.
func SplitIdentifiers(t *Table, column, delimiter string) (*Table, error) {
	if err := t.RequireColumns(column); err != nil {
		return nil, err
	}

	for _, c := range []string{FieldColumn, SampleColumn} {
		if t.HasColumn(c) {
			return nil, errors.InvalidInputf("column %q already present; rename it before deriving it from %q", c, column)
		}
	}
	headers := append(append([]string(nil), t.Headers...), FieldColumn, SampleColumn)

	out := &Table{Headers: headers, Rows: make([]Row, 0, len(t.Rows))}
	for i, r := range t.Rows {
		nr := make(Row, len(r)+2)
		for k, v := range r {
			nr[k] = v
		}
		raw := strings.TrimSpace(r[column])
		if raw == "" {
			nr[FieldColumn], nr[SampleColumn] = "", ""
		} else {
			id, err := ParseIdentifier(raw, delimiter)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", i+1)
			}
			nr[FieldColumn], nr[SampleColumn] = string(id.Field), id.Sample
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
