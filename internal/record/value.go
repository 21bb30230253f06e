// Package record models the form records edited by kardex: typed field
// values, multi-value selection groups with exclusivity rules, and
// canonical snapshots used for change detection.
//
// Records are persisted as flat strings (one per field), so every value
// kind defines a canonical string encoding. Snapshots are built from
// those canonical encodings, which makes snapshot equality a plain
// string comparison regardless of how the value was typed in.
package record

import (
	"fmt"
	"time"
)

// DateLayout is the canonical on-disk format for date fields.
const DateLayout = "2006-01-02"

// Kind identifies the type of a field value.
type Kind int

const (
	// KindText is free text.
	KindText Kind = iota
	// KindInt is an optional whole number.
	KindInt
	// KindDecimal is an optional decimal number.
	KindDecimal
	// KindBool is an optional yes/no flag.
	KindBool
	// KindDate is an optional calendar date (no time of day).
	KindDate
	// KindSelect is a multi-value selection from a fixed vocabulary.
	KindSelect
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// KindFromString parses a kind name as used in form definition files.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "int":
		return KindInt, nil
	case "decimal":
		return KindDecimal, nil
	case "bool":
		return KindBool, nil
	case "date":
		return KindDate, nil
	case "select":
		return KindSelect, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q", s)
	}
}

// Value holds one field's in-memory state. Only the member matching
// Kind is meaningful; optional scalars use nil pointers for "empty".
type Value struct {
	Kind Kind

	Text string
	Int  *int64
	Dec  *float64
	Bool *bool
	Date *time.Time
	Sel  Selection
}

// EmptyValue returns the zero value for the given kind.
func EmptyValue(kind Kind) Value {
	v := Value{Kind: kind}
	if kind == KindSelect {
		v.Sel = NewSelection()
	}
	return v
}

// TextValue returns a text value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// IntValue returns a whole-number value.
func IntValue(n int64) Value {
	return Value{Kind: KindInt, Int: &n}
}

// DecimalValue returns a decimal value.
func DecimalValue(f float64) Value {
	return Value{Kind: KindDecimal, Dec: &f}
}

// BoolValue returns a flag value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: &b}
}

// DateValue returns a date value, truncated to the day.
func DateValue(t time.Time) Value {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Value{Kind: KindDate, Date: &day}
}

// SelectValue returns a selection value.
func SelectValue(sel Selection) Value {
	if sel == nil {
		sel = NewSelection()
	}
	return Value{Kind: KindSelect, Sel: sel}
}

// IsEmpty reports whether the value carries no data.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindText:
		return v.Text == ""
	case KindInt:
		return v.Int == nil
	case KindDecimal:
		return v.Dec == nil
	case KindBool:
		return v.Bool == nil
	case KindDate:
		return v.Date == nil
	case KindSelect:
		return len(v.Sel) == 0
	default:
		return true
	}
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	out := Value{Kind: v.Kind, Text: v.Text}
	if v.Int != nil {
		n := *v.Int
		out.Int = &n
	}
	if v.Dec != nil {
		f := *v.Dec
		out.Dec = &f
	}
	if v.Bool != nil {
		b := *v.Bool
		out.Bool = &b
	}
	if v.Date != nil {
		t := *v.Date
		out.Date = &t
	}
	if v.Sel != nil {
		out.Sel = v.Sel.Clone()
	}
	return out
}
