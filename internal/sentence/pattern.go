package sentence

import (
	"slices"
	"strings"

	"github.com/conorfennell/salita/internal/domain"
)

// Pattern names a known sentence skeleton.
type Pattern string

const (
	PatternUnknown                     Pattern = "unknown"
	PatternVerbPronoun                 Pattern = "verb-pronoun"
	PatternVerbFocusNoun               Pattern = "verb-focus-noun"
	PatternAdjectiveFocusNoun          Pattern = "adjective-focus-noun"
	PatternVerbFocusNounPossessionNoun Pattern = "verb-focus-noun-possession-noun"
)

// slot is the role a token plays when matching patterns. Particles are split
// into focus and possession markers; every other token uses its word type.
type slot string

const (
	slotFocus      slot = "focus"
	slotPossession slot = "possession"
)

type patternDef struct {
	pattern  Pattern
	slots    []slot
	skeleton string
}

var patterns = []patternDef{
	{
		pattern:  PatternVerbPronoun,
		slots:    []slot{slot(domain.TypeVerb), slot(domain.TypePronoun)},
		skeleton: "Verb + Pronoun, e.g. \"Kumain ako\" (I ate).",
	},
	{
		pattern:  PatternVerbFocusNoun,
		slots:    []slot{slot(domain.TypeVerb), slotFocus, slot(domain.TypeNoun)},
		skeleton: "Verb + ang + Noun: start with the action, then mark the topic with ang.",
	},
	{
		pattern:  PatternAdjectiveFocusNoun,
		slots:    []slot{slot(domain.TypeAdjective), slotFocus, slot(domain.TypeNoun)},
		skeleton: "Adjective + ang + Noun: the description comes first, e.g. \"Malaki ang bahay\".",
	},
	{
		pattern:  PatternVerbFocusNounPossessionNoun,
		slots:    []slot{slot(domain.TypeVerb), slotFocus, slot(domain.TypeNoun), slotPossession, slot(domain.TypeNoun)},
		skeleton: "Verb + ang + Noun + ng + Noun: the owner follows ng after the topic.",
	},
}

// IdentifyPattern returns the first known pattern the word sequence matches.
func (v *Validator) IdentifyPattern(words []domain.VocabularyWord) Pattern {
	if def, ok := v.matchPattern(words); ok {
		return def.pattern
	}
	return PatternUnknown
}

func (v *Validator) matchPattern(words []domain.VocabularyWord) (patternDef, bool) {
	slots := make([]slot, len(words))
	for i, w := range words {
		slots[i] = v.slotOf(w)
	}
	for _, def := range patterns {
		if slices.Equal(def.slots, slots) {
			return def, true
		}
	}
	return patternDef{}, false
}

func (v *Validator) slotOf(w domain.VocabularyWord) slot {
	if w.Type == domain.TypeParticle {
		switch {
		case v.focus[w.ID]:
			return slotFocus
		case v.possession[w.ID]:
			return slotPossession
		}
	}
	return slot(w.Type)
}

// skeletonHint describes the expected shape of a sentence made of words.
func (v *Validator) skeletonHint(words []domain.VocabularyWord) string {
	if def, ok := v.matchPattern(words); ok {
		return "Pattern: " + def.skeleton
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = titleCase(string(v.slotOf(w)))
	}
	return "Build the sentence in this order: " + strings.Join(parts, " + ") + "."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
