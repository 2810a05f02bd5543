// Package sentence checks sentences a learner builds from word ids against a
// target sentence and produces a scored report with remediation hints.
package sentence

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/conorfennell/salita/internal/domain"
)

// Suggestion texts.
const (
	SuggestionPerfect       = "Perfect! The sentence is correct."
	suggestParticles        = "Review particle usage: each particle comes right before the word it marks."
	suggestVerbFirst        = "Tagalog sentences usually start with the verb: Verb + ang + Noun."
	suggestMissingVerb      = "This sentence needs the verb %s."
	suggestMissingParticles = "Missing particles: %s."
	suggestStartOver        = "Try starting over and build the sentence one word at a time."
	suggestGeneric          = "Try rearranging the words or check the particles."

	lowScore = 30
)

var (
	defaultFocusParticles      = []string{"ang", "si", "sina"}
	defaultPossessionParticles = []string{"ng", "ni", "nina"}
)

// Lookup resolves word ids to vocabulary entries.
type Lookup interface {
	Word(id string) (domain.VocabularyWord, bool)
}

// Validator scores attempted sentences. It holds no mutable state.
type Validator struct {
	vocab      Lookup
	focus      map[string]bool
	possession map[string]bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithParticles sets the particle ids treated as focus and possession markers
// by the ordering heuristics and pattern matching.
func WithParticles(focus, possession []string) Option {
	return func(v *Validator) {
		v.focus = toSet(focus)
		v.possession = toSet(possession)
	}
}

// NewValidator creates a validator over a read-only vocabulary.
func NewValidator(vocab Lookup, opts ...Option) *Validator {
	v := &Validator{
		vocab:      vocab,
		focus:      toSet(defaultFocusParticles),
		possession: toSet(defaultPossessionParticles),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// token is a resolved word together with its position in the submitted ids.
type token struct {
	index int
	word  domain.VocabularyWord
}

// resolve drops ids missing from the vocabulary.
func (v *Validator) resolve(ids []string) []token {
	tokens := make([]token, 0, len(ids))
	for i, id := range ids {
		if w, ok := v.vocab.Word(id); ok {
			tokens = append(tokens, token{index: i, word: w})
		}
	}
	return tokens
}

func words(tokens []token) []domain.VocabularyWord {
	out := make([]domain.VocabularyWord, len(tokens))
	for i, t := range tokens {
		out[i] = t.word
	}
	return out
}

// Validate scores attempt against target.
func (v *Validator) Validate(attempt, target []string) Report {
	if slices.Equal(attempt, target) {
		return Report{
			IsValid:     true,
			Score:       100,
			Errors:      []Issue{},
			Suggestions: []string{SuggestionPerfect},
		}
	}

	issues := []Issue{}
	if len(attempt) != len(target) {
		issues = append(issues, Issue{
			Kind:     KindWordOrder,
			Message:  fmt.Sprintf("Expected %d words but got %d.", len(target), len(attempt)),
			Severity: SeverityError,
		})
	}

	attemptTokens := v.resolve(attempt)
	targetTokens := v.resolve(target)

	issues = append(issues, checkWords(attemptTokens, targetTokens)...)
	issues = append(issues, v.checkParticles(attemptTokens)...)
	issues = append(issues, v.checkOrder(attemptTokens, targetTokens)...)

	report := Report{
		IsValid: !slices.ContainsFunc(issues, func(is Issue) bool { return is.Severity == SeverityError }),
		Score:   score(attempt, target, issues),
		Errors:  issues,
	}
	report.Suggestions = v.suggestions(report, attemptTokens, targetTokens)
	return report
}

// checkWords compares the attempt and target as multisets of word ids.
func checkWords(attempt, target []token) []Issue {
	var issues []Issue

	available := make(map[string]int, len(attempt))
	for _, t := range attempt {
		available[t.word.ID]++
	}
	for _, t := range target {
		if available[t.word.ID] > 0 {
			available[t.word.ID]--
			continue
		}
		issues = append(issues, Issue{
			Kind:         KindWordOrder,
			Message:      fmt.Sprintf("Missing word %q.", t.word.Text),
			WordIndex:    at(t.index),
			ExpectedWord: t.word.Text,
			Severity:     SeverityError,
		})
	}

	needed := make(map[string]int, len(target))
	for _, t := range target {
		needed[t.word.ID]++
	}
	for _, t := range attempt {
		if needed[t.word.ID] > 0 {
			needed[t.word.ID]--
			continue
		}
		issues = append(issues, Issue{
			Kind:      KindWordOrder,
			Message:   fmt.Sprintf("%q is not part of this sentence.", t.word.Text),
			WordIndex: at(t.index),
			Severity:  SeverityWarning,
		})
	}
	return issues
}

// checkParticles verifies that particles mark a following word and that nouns
// get the particle they require.
func (v *Validator) checkParticles(attempt []token) []Issue {
	var issues []Issue
	for i, t := range attempt {
		switch t.word.Type {
		case domain.TypeParticle:
			if i == len(attempt)-1 || attempt[i+1].word.Type == domain.TypeParticle {
				issues = append(issues, Issue{
					Kind:      KindParticleIncorrect,
					Message:   fmt.Sprintf("The particle %q must be followed by the word it marks.", t.word.Text),
					WordIndex: at(t.index),
					Severity:  SeverityError,
				})
			}
		case domain.TypeNoun:
			required := t.word.RequiresParticle
			if len(required) == 0 {
				continue
			}
			if i > 0 && attempt[i-1].word.Type == domain.TypeParticle && slices.Contains(required, attempt[i-1].word.ID) {
				continue
			}
			issues = append(issues, Issue{
				Kind:         KindParticleMissing,
				Message:      fmt.Sprintf("%q should be preceded by %s.", t.word.Text, strings.Join(required, " or ")),
				WordIndex:    at(t.index),
				ExpectedWord: required[0],
				Severity:     SeverityWarning,
			})
		}
	}
	return issues
}

// checkOrder applies the advisory word-order heuristics.
func (v *Validator) checkOrder(attempt, target []token) []Issue {
	var issues []Issue

	if len(target) > 0 && target[0].word.Type == domain.TypeVerb &&
		(len(attempt) == 0 || attempt[0].word.Type != domain.TypeVerb) {
		issues = append(issues, Issue{
			Kind:         KindWordOrder,
			Message:      "This sentence starts with the verb.",
			WordIndex:    at(0),
			ExpectedWord: target[0].word.Text,
			Severity:     SeverityInfo,
		})
	}

	verb := indexOf(attempt, func(w domain.VocabularyWord) bool { return w.Type == domain.TypeVerb })
	focus := indexOf(attempt, func(w domain.VocabularyWord) bool { return v.slotOf(w) == slotFocus })
	possession := indexOf(attempt, func(w domain.VocabularyWord) bool { return v.slotOf(w) == slotPossession })

	if verb >= 0 && focus >= 0 && verb > focus {
		issues = append(issues, Issue{
			Kind:      KindWordOrder,
			Message:   fmt.Sprintf("The verb usually comes before %q.", attempt[focus].word.Text),
			WordIndex: at(attempt[verb].index),
			Severity:  SeverityInfo,
		})
	}
	if focus >= 0 && possession >= 0 && focus > possession {
		issues = append(issues, Issue{
			Kind:      KindWordOrder,
			Message:   fmt.Sprintf("%q usually comes before %q.", attempt[focus].word.Text, attempt[possession].word.Text),
			WordIndex: at(attempt[focus].index),
			Severity:  SeverityInfo,
		})
	}
	return issues
}

func indexOf(tokens []token, match func(domain.VocabularyWord) bool) int {
	return slices.IndexFunc(tokens, func(t token) bool { return match(t.word) })
}

// score awards positional credit for exact matches and deducts per issue.
func score(attempt, target []string, issues []Issue) int {
	var total float64
	if len(target) > 0 {
		per := 100 / float64(len(target))
		for i := range min(len(attempt), len(target)) {
			if attempt[i] == target[i] {
				total += per
			}
		}
	}
	for _, is := range issues {
		total -= is.Severity.Penalty()
	}
	return int(math.Round(domain.Clamp(total, 0, 100)))
}

func (v *Validator) suggestions(report Report, attempt, target []token) []string {
	var out []string

	if slices.ContainsFunc(report.Errors, func(is Issue) bool { return is.Kind.IsParticle() }) {
		out = append(out, suggestParticles)
	}
	if report.HasKind(KindWordOrder) {
		out = append(out, suggestVerbFirst)
	}

	present := make(map[string]bool, len(attempt))
	for _, t := range attempt {
		present[t.word.ID] = true
	}
	if verbs := absent(target, present, domain.TypeVerb); len(verbs) > 0 {
		out = append(out, fmt.Sprintf(suggestMissingVerb, quoteAll(verbs)))
	}
	if particles := absent(target, present, domain.TypeParticle); len(particles) > 0 {
		out = append(out, fmt.Sprintf(suggestMissingParticles, strings.Join(particles, ", ")))
	}

	if report.Score < lowScore {
		out = append(out, suggestStartOver)
	}
	if len(out) == 0 {
		out = append(out, suggestGeneric)
	}
	return out
}

// absent lists, in target order and without repeats, the texts of target words
// of type wt whose ids are not present.
func absent(target []token, present map[string]bool, wt domain.WordType) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range target {
		if t.word.Type != wt || present[t.word.ID] || seen[t.word.ID] {
			continue
		}
		seen[t.word.ID] = true
		out = append(out, t.word.Text)
	}
	return out
}

func quoteAll(texts []string) string {
	quoted := make([]string, len(texts))
	for i, s := range texts {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " and ")
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
