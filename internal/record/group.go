package record

import (
	"fmt"
	"strings"
)

// NoSentinel marks a selection group without a sentinel option.
const NoSentinel = -1

// GroupDef configures one selection group: the ordered option
// vocabulary and, optionally, the index of a sentinel option such as
// "None" or "Normal" that excludes every other option.
//
// Invariant enforced by Normalize: when a sentinel is configured and
// selected, it is the only selected label.
type GroupDef struct {
	Options  []string
	Sentinel int
}

// Validate checks the group configuration.
func (g GroupDef) Validate() error {
	if len(g.Options) == 0 {
		return fmt.Errorf("group has no options")
	}
	seen := make(map[string]struct{}, len(g.Options))
	for _, opt := range g.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("group option is empty")
		}
		if strings.Contains(opt, multiSep) {
			return fmt.Errorf("group option %q contains the delimiter %q", opt, multiSep)
		}
		if opt != strings.TrimSpace(opt) {
			return fmt.Errorf("group option %q has leading or trailing whitespace", opt)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("duplicate group option %q", opt)
		}
		seen[opt] = struct{}{}
	}
	if g.Sentinel != NoSentinel && (g.Sentinel < 0 || g.Sentinel >= len(g.Options)) {
		return fmt.Errorf("sentinel index %d out of range (0..%d)", g.Sentinel, len(g.Options)-1)
	}
	return nil
}

// HasSentinel reports whether the group has a sentinel option.
func (g GroupDef) HasSentinel() bool {
	return g.Sentinel >= 0 && g.Sentinel < len(g.Options)
}

// SentinelLabel returns the sentinel option's label, or "" when the
// group has no sentinel.
func (g GroupDef) SentinelLabel() string {
	if !g.HasSentinel() {
		return ""
	}
	return g.Options[g.Sentinel]
}

// Contains reports whether the label is part of the vocabulary.
func (g GroupDef) Contains(label string) bool {
	for _, opt := range g.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// Clamp intersects a selection with the vocabulary, silently dropping
// labels the current configuration no longer knows. Stale persisted
// data referencing a retired option is tolerated, never an error.
func (g GroupDef) Clamp(sel Selection) Selection {
	out := NewSelection()
	for label := range sel {
		if g.Contains(label) {
			out.Add(label)
		}
	}
	return out
}

// Normalize computes the accepted selection for a transition from the
// immediately prior accepted selection to a proposed one.
//
// The sentinel rule is last-toggled-wins: if the proposal contains the
// sentinel together with other labels, the sentinel wins when it was
// just toggled on (absent from old) and loses when it was already
// selected and another label was just added. Callers must pass the
// prior accepted selection, not a persisted baseline, so that several
// toggles before a save each re-normalize correctly.
func (g GroupDef) Normalize(old, proposed Selection) Selection {
	accepted := g.Clamp(proposed)
	if !g.HasSentinel() {
		return accepted
	}

	sentinel := g.SentinelLabel()
	if !accepted.Has(sentinel) || len(accepted) == 1 {
		return accepted
	}

	if !old.Has(sentinel) {
		// Sentinel was the option just toggled on: it clears the rest.
		return NewSelection(sentinel)
	}

	// Sentinel was already active and another option was just added:
	// the sentinel gives way.
	accepted = accepted.Clone()
	accepted.Remove(sentinel)
	return accepted
}
