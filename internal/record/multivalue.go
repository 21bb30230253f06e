package record

import (
	"sort"
	"strings"
)

// multiSep is the delimiter used when a selection is persisted as a
// single string. Labels therefore must not contain commas.
const multiSep = ","

// Selection is a set of labels chosen from a selection group.
type Selection map[string]struct{}

// NewSelection builds a selection from the given labels.
func NewSelection(labels ...string) Selection {
	sel := make(Selection, len(labels))
	for _, l := range labels {
		sel[l] = struct{}{}
	}
	return sel
}

// Has reports whether the label is selected.
func (s Selection) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Add selects the label.
func (s Selection) Add(label string) {
	s[label] = struct{}{}
}

// Remove deselects the label.
func (s Selection) Remove(label string) {
	delete(s, label)
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	return out
}

// Labels returns the selected labels in lexicographic order.
func (s Selection) Labels() []string {
	labels := make([]string, 0, len(s))
	for l := range s {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Equal reports whether two selections contain the same labels.
func (s Selection) Equal(t Selection) bool {
	if len(s) != len(t) {
		return false
	}
	for l := range s {
		if !t.Has(l) {
			return false
		}
	}
	return true
}

// DecodeMulti parses a delimited selection string as persisted in a
// record field. Tokens are trimmed and empty tokens are dropped, so
// legacy spacing or trailing delimiters never corrupt the set.
func DecodeMulti(text string) Selection {
	sel := NewSelection()
	if text == "" {
		return sel
	}
	for _, token := range strings.Split(text, multiSep) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		sel.Add(token)
	}
	return sel
}

// EncodeMulti renders a selection as its canonical persisted string:
// labels sorted lexicographically, joined with ", ". Two semantically
// equal selections always encode identically, which snapshot equality
// depends on.
func EncodeMulti(sel Selection) string {
	return strings.Join(sel.Labels(), multiSep+" ")
}
