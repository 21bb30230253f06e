package record

// Snapshot is an immutable copy of a record's field values at a point
// in time, stored as canonical encoded strings keyed by field key.
//
// Because every kind canonicalizes (numbers re-formatted from their
// parsed value, selections sorted), snapshot equality is exact string
// equality per field: re-typing "3.0" over a stored "3" or toggling a
// set back into a different insertion order never reads as a change.
type Snapshot map[string]string

// Capture takes a snapshot of the record under the given form shape.
func Capture(def FormDef, rec *Record) Snapshot {
	snap := make(Snapshot, len(def.Fields))
	for _, fd := range def.Fields {
		v, ok := rec.Value(fd.Key)
		if !ok {
			v = EmptyValue(fd.Kind)
		}
		snap[fd.Key] = EncodeField(fd, v)
	}
	return snap
}

// Equal reports whether two snapshots hold identical field values.
func (s Snapshot) Equal(t Snapshot) bool {
	if len(s) != len(t) {
		return false
	}
	for k, v := range s {
		tv, ok := t[k]
		if !ok || tv != v {
			return false
		}
	}
	return true
}

// IsDirty reports whether the current snapshot has diverged from the
// baseline. This is the single authority for whether a persist is
// attempted.
func IsDirty(current, baseline Snapshot) bool {
	return !current.Equal(baseline)
}
