package mapping

import (
	"fmt"
	"strings"
)

// Drift describes a property whose declared column type disagrees with the
// live schema.
type Drift struct {
	Entity   string
	Property string
	Column   string
	Declared StoreType
	Actual   *StoreType // nil when the column is missing
	Hazard   string
}

func (d Drift) String() string {
	actual := "missing"
	if d.Actual != nil {
		actual = d.Actual.String()
	}
	return fmt.Sprintf("%s.%s (%s): declared %s, actual %s: %s",
		d.Entity, d.Property, d.Column, d.Declared, actual, d.Hazard)
}

// CompareColumns checks each mapped property of e against the actual
// column types, keyed by column name (case-insensitive). It only reports;
// queries keep using the declared types.
func CompareColumns(e *Entity, actual map[string]StoreType) []Drift {
	lower := make(map[string]StoreType, len(actual))
	for name, t := range actual {
		lower[strings.ToLower(name)] = t
	}

	var drifts []Drift
	for _, p := range e.props {
		d := Drift{Entity: e.Name, Property: p.Field, Column: p.Column, Declared: p.Type}

		got, ok := lower[strings.ToLower(p.Column)]
		if !ok {
			d.Hazard = "column not found in table " + e.Table
			drifts = append(drifts, d)
			continue
		}
		d.Actual = &got

		switch {
		case got.Kind == KindUnmodelled:
			d.Hazard = fmt.Sprintf("column type %s is not modelled; the declared %s cannot be checked", got.Name, p.Type)
		case got.Kind != p.Type.Kind:
			d.Hazard = fmt.Sprintf("declared %s but column holds %s values", p.Type.Kind, got.Kind)
		case p.Type.Encoding == EncodingWide && got.Encoding == EncodingNarrow:
			d.Hazard = "filter values are typed wide; the column is converted on every comparison and its index cannot be seeked"
		case p.Type.Encoding == EncodingNarrow && got.Encoding == EncodingWide:
			d.Hazard = "filter values are typed narrow; characters outside the narrow code page are lost"
		default:
			continue
		}
		drifts = append(drifts, d)
	}
	return drifts
}
