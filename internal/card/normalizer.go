// Package card canonicalizes card identities. Tournament exports spell the
// same printing many ways ("s1/1", "S1/001", "S1~01"); everything that merges
// cards goes through a Normalizer so those variants collapse into one key.
package card

import (
	"regexp"
	"strings"
	"sync"
)

// Separator joins the name, set and number components of a canonical UID.
const Separator = "::"

var numberPattern = regexp.MustCompile(`^0*([0-9]+)([A-Za-z]*)$`)

// NormalizeNumber normalizes a collector number: the numeric prefix is
// zero-padded to three digits and any alphabetic suffix is uppercased
// ("7" -> "007", "12a" -> "012A"). Non-numeric input is uppercased and
// otherwise returned unchanged.
func NormalizeNumber(value string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	m := numberPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed
	}
	digits, suffix := m[1], m[2]
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return digits + suffix
}

// NormalizeSet normalizes a set code (uppercased, trimmed).
func NormalizeSet(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// CanonicalKey composes the stable identity of a printing:
// NAME::SET::NUMBER with the set and number normalized. When either the
// set or the number is missing the card is tracked by name alone and the
// key is the bare name.
func CanonicalKey(name, set, number string) string {
	name = strings.TrimSpace(name)
	sc := NormalizeSet(set)
	num := NormalizeNumber(number)
	if sc == "" || num == "" {
		return name
	}
	return name + Separator + sc + Separator + num
}

// ParsePrinting splits a set/number fragment such as "S1/1", "S1~001",
// "S1:1" or "S1-001" into its normalized components. Returns empty
// strings when the fragment has no recognizable separator.
func ParsePrinting(fragment string) (set, number string) {
	fragment = strings.TrimSpace(fragment)
	for _, sep := range []string{"~", "/", ":", "-", " "} {
		if idx := strings.Index(fragment, sep); idx > 0 {
			return NormalizeSet(fragment[:idx]), NormalizeNumber(fragment[idx+len(sep):])
		}
	}
	return "", ""
}

// ParseUID splits a card UID into name, set and number, accepting the
// canonical "Name::SET::NUM" form as well as "Name::SET~NUM" style
// variants. A UID without printing components parses to a bare name.
func ParseUID(uid string) (name, set, number string) {
	parts := strings.Split(uid, Separator)
	switch len(parts) {
	case 1:
		return strings.TrimSpace(uid), "", ""
	case 2:
		set, number = ParsePrinting(parts[1])
		return strings.TrimSpace(parts[0]), set, number
	default:
		return strings.TrimSpace(parts[0]), NormalizeSet(parts[1]), NormalizeNumber(parts[2])
	}
}

// SynonymTable maps printed variants (alternate arts, promos, reprints)
// to one canonical UID. It is external data, typically fetched once and
// reused.
type SynonymTable struct {
	// Synonyms maps a variant UID to its canonical UID.
	Synonyms map[string]string `json:"synonyms"`

	// Canonicals maps a base card name to its canonical UID, for cards
	// tracked without a specific printing.
	Canonicals map[string]string `json:"canonicals"`
}

// Normalizer resolves card identities against an injected synonym table.
// The zero value (or a nil table) resolves every key to itself.
type Normalizer struct {
	mu    sync.RWMutex
	table *SynonymTable
}

// NewNormalizer creates a Normalizer over the given synonym table. A nil
// table is valid and yields identity resolution.
func NewNormalizer(table *SynonymTable) *Normalizer {
	return &Normalizer{table: table}
}

// Reload replaces the synonym table. Safe for concurrent use with
// Resolve; in-flight resolutions finish against the old table.
func (n *Normalizer) Reload(table *SynonymTable) {
	n.mu.Lock()
	n.table = table
	n.mu.Unlock()
}

// Resolve canonicalizes a (name, set, number) triple. Resolution order:
// exact UID synonym, then base-name canonical, then identity. It never
// fails; an unmapped key is returned in its normalized form.
func (n *Normalizer) Resolve(name, set, number string) string {
	return n.ResolveUID(CanonicalKey(name, set, number))
}

// ResolveUID canonicalizes an already-composed UID.
func (n *Normalizer) ResolveUID(uid string) string {
	n.mu.RLock()
	table := n.table
	n.mu.RUnlock()
	if table == nil {
		return uid
	}
	if canonical, ok := table.Synonyms[uid]; ok && canonical != "" {
		return canonical
	}
	name, _, _ := ParseUID(uid)
	if canonical, ok := table.Canonicals[name]; ok && canonical != "" {
		// Only promote a bare name to its canonical printing; a UID that
		// already names a printing stays as it is.
		if name == uid {
			return canonical
		}
	}
	return uid
}

// BaseName returns the display name of a UID (the part before the first
// separator).
func BaseName(uid string) string {
	if idx := strings.Index(uid, Separator); idx >= 0 {
		return uid[:idx]
	}
	return uid
}
