package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JonMunkholm/productlist/internal/catalog"
	"github.com/JonMunkholm/productlist/internal/config"
)

// MatchOptions selects the fallback tiers and their markers.
type MatchOptions struct {
	BaseFallback    bool
	SpecialFallback bool
	SpecialPrefix   string // token stripped by the special tier
	RejectMarker    string // hits whose key contains this are ignored
}

// DefaultMatchOptions enables every tier.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		BaseFallback:    true,
		SpecialFallback: true,
		SpecialPrefix:   "SPECIAL",
		RejectMarker:    "ALL COLORS",
	}
}

// MatchOptionsFromConfig copies the configured tier flags and markers.
func MatchOptionsFromConfig(cfg config.MatchConfig) MatchOptions {
	return MatchOptions{
		BaseFallback:    cfg.BaseFallback,
		SpecialFallback: cfg.SpecialFallback,
		SpecialPrefix:   strings.ToUpper(strings.TrimSpace(cfg.SpecialPrefix)),
		RejectMarker:    strings.ToUpper(strings.TrimSpace(cfg.RejectMarker)),
	}
}

// Candidate is one lookup key and the tier a hit on it binds.
type Candidate struct {
	Key  string
	Tier Tier
}

// BaseKey returns the part of an article number before the first "-",
// normalized like a catalog key. Without a "-" it is the whole number.
func BaseKey(article string) string {
	base, _, _ := strings.Cut(catalog.NormalizeKey(article), "-")
	return strings.TrimSpace(base)
}

// stripSpecial removes a leading prefix token and the whitespace after it.
// The prefix only counts as a token when no letter follows it, so
// "SPECIAL 99" and "SPECIAL99" yield "99" but "SPECIALIST" is left alone.
func stripSpecial(key, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) {
		return "", false
	}
	return strings.TrimLeftFunc(rest, unicode.IsSpace), true
}

// Candidates returns the lookup keys for an article number, highest
// priority first. Empty keys and keys equal to an earlier candidate are
// left out, so a tier never retries a key a higher tier already tried.
func Candidates(article string, opts MatchOptions) []Candidate {
	out := make([]Candidate, 0, 3)
	add := func(key string, tier Tier) {
		if key == "" {
			return
		}
		for _, c := range out {
			if c.Key == key {
				return
			}
		}
		out = append(out, Candidate{Key: key, Tier: tier})
	}

	add(catalog.NormalizeKey(article), TierDirect)

	base := BaseKey(article)
	if opts.BaseFallback {
		add(base, TierBase)
	}
	if opts.SpecialFallback {
		if special, ok := stripSpecial(base, opts.SpecialPrefix); ok {
			add(special, TierSpecial)
		}
	}

	return out
}

// rejected reports whether a hit on key must be ignored.
func (o MatchOptions) rejected(key string) bool {
	return o.RejectMarker != "" && strings.Contains(key, o.RejectMarker)
}
