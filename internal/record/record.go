package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldDef describes one field of a form: its stable key (used as the
// persisted column key), a display label, the value kind, and for
// select fields the group configuration.
type FieldDef struct {
	Key   string
	Label string
	Kind  Kind
	Group *GroupDef
}

// Validate checks the field definition.
func (f FieldDef) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("field key is required")
	}
	if f.Label == "" {
		return fmt.Errorf("field %s: label is required", f.Key)
	}
	if f.Kind == KindSelect {
		if f.Group == nil {
			return fmt.Errorf("field %s: select field needs a group", f.Key)
		}
		if err := f.Group.Validate(); err != nil {
			return fmt.Errorf("field %s: %w", f.Key, err)
		}
	} else if f.Group != nil {
		return fmt.Errorf("field %s: group config on non-select field", f.Key)
	}
	return nil
}

// FormDef describes the shape of one record type, e.g. the perinatal
// history form. The engine is generic over this shape: everything it
// does is driven by the field definitions.
type FormDef struct {
	Name   string
	Title  string
	Fields []FieldDef
}

// Validate checks the form definition, including every field.
func (f FormDef) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("form name is required")
	}
	if len(f.Fields) == 0 {
		return fmt.Errorf("form %s: no fields", f.Name)
	}
	seen := make(map[string]struct{}, len(f.Fields))
	for _, fd := range f.Fields {
		if err := fd.Validate(); err != nil {
			return fmt.Errorf("form %s: %w", f.Name, err)
		}
		if _, dup := seen[fd.Key]; dup {
			return fmt.Errorf("form %s: duplicate field key %s", f.Name, fd.Key)
		}
		seen[fd.Key] = struct{}{}
	}
	return nil
}

// Field looks up a field definition by key.
func (f FormDef) Field(key string) (FieldDef, bool) {
	for _, fd := range f.Fields {
		if fd.Key == key {
			return fd, true
		}
	}
	return FieldDef{}, false
}

// Record is one subject's data for one form: a plain aggregate of
// typed field values keyed by field key.
type Record struct {
	Subject string
	Fields  map[string]Value
}

// New returns an empty record for the given form and subject.
func New(def FormDef, subject string) *Record {
	fields := make(map[string]Value, len(def.Fields))
	for _, fd := range def.Fields {
		fields[fd.Key] = EmptyValue(fd.Kind)
	}
	return &Record{Subject: subject, Fields: fields}
}

// Value returns the value for a field key.
func (r *Record) Value(key string) (Value, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Set stores a value for a field key.
func (r *Record) Set(key string, v Value) {
	r.Fields[key] = v
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{Subject: r.Subject, Fields: make(map[string]Value, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v.Clone()
	}
	return out
}

// EncodeField renders a value as its canonical persisted string.
// Numbers are re-formatted from their parsed form, so "3.0" and "3"
// encode identically; selections encode sorted. Empty values encode
// as "".
func EncodeField(def FieldDef, v Value) string {
	switch def.Kind {
	case KindText:
		return v.Text
	case KindInt:
		if v.Int == nil {
			return ""
		}
		return strconv.FormatInt(*v.Int, 10)
	case KindDecimal:
		if v.Dec == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Dec, 'f', -1, 64)
	case KindBool:
		if v.Bool == nil {
			return ""
		}
		return strconv.FormatBool(*v.Bool)
	case KindDate:
		if v.Date == nil {
			return ""
		}
		return v.Date.Format(DateLayout)
	case KindSelect:
		return EncodeMulti(v.Sel)
	default:
		return ""
	}
}

// DecodeField parses a persisted string back into a typed value.
// Decoding is tolerant: unparsable scalars decode as empty, and select
// values are clamped to the current vocabulary so that data written by
// an older version never raises an error here.
func DecodeField(def FieldDef, text string) Value {
	if text == "" && def.Kind != KindSelect {
		return EmptyValue(def.Kind)
	}
	switch def.Kind {
	case KindText:
		return TextValue(text)
	case KindInt:
		if n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return IntValue(n)
		}
		return EmptyValue(def.Kind)
	case KindDecimal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return DecimalValue(f)
		}
		return EmptyValue(def.Kind)
	case KindBool:
		if b, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return BoolValue(b)
		}
		return EmptyValue(def.Kind)
	case KindDate:
		if t, err := time.Parse(DateLayout, strings.TrimSpace(text)); err == nil {
			return DateValue(t)
		}
		return EmptyValue(def.Kind)
	case KindSelect:
		sel := DecodeMulti(text)
		if def.Group != nil {
			sel = def.Group.Clamp(sel)
		}
		return SelectValue(sel)
	default:
		return EmptyValue(def.Kind)
	}
}

// ParseField converts user input into a typed value, with empty input
// coercing to the empty value. Unlike DecodeField it is strict:
// malformed input is an error, because it comes from a live edit
// rather than from tolerated legacy data.
func ParseField(def FieldDef, input string) (Value, error) {
	input = strings.TrimSpace(input)
	if input == "" && def.Kind != KindSelect {
		return EmptyValue(def.Kind), nil
	}
	switch def.Kind {
	case KindText:
		return TextValue(input), nil
	case KindInt:
		n, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%s: not a whole number: %q", def.Key, input)
		}
		return IntValue(n), nil
	case KindDecimal:
		f, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%s: not a number: %q", def.Key, input)
		}
		return DecimalValue(f), nil
	case KindBool:
		b, err := strconv.ParseBool(input)
		if err != nil {
			return Value{}, fmt.Errorf("%s: not a yes/no value: %q", def.Key, input)
		}
		return BoolValue(b), nil
	case KindDate:
		t, err := time.Parse(DateLayout, input)
		if err != nil {
			return Value{}, fmt.Errorf("%s: not a date (want %s): %q", def.Key, DateLayout, input)
		}
		return DateValue(t), nil
	case KindSelect:
		sel := DecodeMulti(input)
		if def.Group != nil {
			sel = def.Group.Clamp(sel)
		}
		return SelectValue(sel), nil
	default:
		return Value{}, fmt.Errorf("%s: unsupported kind", def.Key)
	}
}

// FromFields rebuilds a record from its flat persisted representation.
// Unknown keys are ignored; missing keys decode as empty.
func FromFields(def FormDef, subject string, fields map[string]string) *Record {
	rec := New(def, subject)
	for _, fd := range def.Fields {
		if text, ok := fields[fd.Key]; ok {
			rec.Fields[fd.Key] = DecodeField(fd, text)
		}
	}
	return rec
}

// ToFields renders a record as its flat persisted representation:
// field key to canonical encoded string.
func ToFields(def FormDef, rec *Record) map[string]string {
	out := make(map[string]string, len(def.Fields))
	for _, fd := range def.Fields {
		v, ok := rec.Value(fd.Key)
		if !ok {
			v = EmptyValue(fd.Kind)
		}
		out[fd.Key] = EncodeField(fd, v)
	}
	return out
}
