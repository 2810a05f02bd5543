package sentence

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/salita/internal/domain"
)

func testVocabulary() domain.Vocabulary {
	return domain.NewVocabulary(
		domain.VocabularyWord{ID: "ang", Text: "ang", Type: domain.TypeParticle},
		domain.VocabularyWord{ID: "ng", Text: "ng", Type: domain.TypeParticle},
		domain.VocabularyWord{ID: "sa", Text: "sa", Type: domain.TypeParticle},
		domain.VocabularyWord{ID: "bahay", Text: "bahay", Type: domain.TypeNoun, RequiresParticle: []string{"ang", "ng"}},
		domain.VocabularyWord{ID: "aso", Text: "aso", Type: domain.TypeNoun, RequiresParticle: []string{"ang"}},
		domain.VocabularyWord{ID: "bata", Text: "bata", Type: domain.TypeNoun},
		domain.VocabularyWord{ID: "malaki", Text: "malaki", Type: domain.TypeAdjective},
		domain.VocabularyWord{ID: "kumain", Text: "kumain", Type: domain.TypeVerb},
		domain.VocabularyWord{ID: "ako", Text: "ako", Type: domain.TypePronoun},
	)
}

func newTestValidator() *Validator {
	return NewValidator(testVocabulary())
}

func kinds(r Report) []Kind {
	out := make([]Kind, len(r.Errors))
	for i, is := range r.Errors {
		out[i] = is.Kind
	}
	return out
}

func severities(r Report) []Severity {
	out := make([]Severity, len(r.Errors))
	for i, is := range r.Errors {
		out[i] = is.Severity
	}
	return out
}

func TestValidateExactMatch(t *testing.T) {
	v := newTestValidator()
	for _, s := range [][]string{
		{"kumain", "ako"},
		{"malaki", "ang", "bahay"},
		{"kumain", "ang", "aso", "ng", "bata"},
		{"unknown-id"},
	} {
		r := v.Validate(s, s)
		assert.True(t, r.IsValid)
		assert.Equal(t, 100, r.Score)
		assert.Empty(t, r.Errors)
		assert.Equal(t, []string{SuggestionPerfect}, r.Suggestions)
	}
}

func TestValidateMissingWord(t *testing.T) {
	r := newTestValidator().Validate([]string{"ang", "bahay"}, []string{"malaki", "ang", "bahay"})

	assert.False(t, r.IsValid)
	assert.Equal(t, 0, r.Score)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, []Kind{KindWordOrder, KindWordOrder}, kinds(r))
	assert.Equal(t, []Severity{SeverityError, SeverityError}, severities(r))
	assert.Contains(t, r.Errors[0].Message, "Expected 3 words but got 2")
	assert.Equal(t, "malaki", r.Errors[1].ExpectedWord)
	assert.Equal(t, []string{suggestVerbFirst, suggestStartOver}, r.Suggestions)
}

func TestValidateExtraWord(t *testing.T) {
	r := newTestValidator().Validate([]string{"malaki", "ang", "bahay", "aso"}, []string{"malaki", "ang", "bahay"})

	assert.False(t, r.IsValid)
	assert.Equal(t, 75, r.Score)
	assert.Equal(t, []Kind{KindWordOrder, KindWordOrder, KindParticleMissing}, kinds(r))
	assert.Equal(t, []Severity{SeverityError, SeverityWarning, SeverityWarning}, severities(r))
	require.NotNil(t, r.Errors[1].WordIndex)
	assert.Equal(t, 3, *r.Errors[1].WordIndex)
}

func TestValidateReorderedWordsOnlyWarn(t *testing.T) {
	r := newTestValidator().Validate([]string{"bahay", "ang", "malaki"}, []string{"malaki", "ang", "bahay"})

	assert.True(t, r.IsValid, "warnings do not invalidate")
	assert.Equal(t, 28, r.Score)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, KindParticleMissing, r.Errors[0].Kind)
	assert.Equal(t, SeverityWarning, r.Errors[0].Severity)
	assert.Equal(t, "ang", r.Errors[0].ExpectedWord)
	assert.Equal(t, []string{suggestParticles, suggestStartOver}, r.Suggestions)
}

func TestValidateParticleMustMarkAWord(t *testing.T) {
	v := newTestValidator()

	t.Run("trailing particle", func(t *testing.T) {
		r := v.Validate([]string{"kumain", "ang"}, []string{"kumain", "ang", "bata"})
		assert.False(t, r.IsValid)
		assert.Equal(t, 22, r.Score)
		assert.True(t, r.HasKind(KindParticleIncorrect))
		assert.Equal(t, []string{suggestParticles, suggestVerbFirst, suggestStartOver}, r.Suggestions)
	})

	t.Run("particle followed by particle", func(t *testing.T) {
		r := v.Validate([]string{"ang", "ng", "bata"}, []string{"ang", "bata", "ng"})
		var incorrect []int
		for _, is := range r.Errors {
			if is.Kind == KindParticleIncorrect {
				incorrect = append(incorrect, *is.WordIndex)
			}
		}
		assert.Equal(t, []int{0}, incorrect)
	})
}

func TestValidateOrderHeuristics(t *testing.T) {
	v := newTestValidator()

	t.Run("verb should lead and precede the focus particle", func(t *testing.T) {
		r := v.Validate([]string{"ang", "bata", "kumain"}, []string{"kumain", "ang", "bata"})
		assert.True(t, r.IsValid)
		assert.Equal(t, []Severity{SeverityInfo, SeverityInfo}, severities(r))
		assert.Equal(t, "kumain", r.Errors[0].ExpectedWord)
		assert.Equal(t, 0, r.Score)
	})

	t.Run("focus before possession", func(t *testing.T) {
		r := v.Validate(
			[]string{"kumain", "ng", "bata", "ang", "aso"},
			[]string{"kumain", "ang", "aso", "ng", "bata"},
		)
		assert.True(t, r.IsValid)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, KindWordOrder, r.Errors[0].Kind)
		assert.Equal(t, SeverityInfo, r.Errors[0].Severity)
		assert.Equal(t, 18, r.Score)
	})
}

func TestValidateSuggestsMissingVerbAndParticles(t *testing.T) {
	r := newTestValidator().Validate([]string{"bata"}, []string{"kumain", "ang", "bata"})

	assert.False(t, r.IsValid)
	assert.Equal(t, []string{
		suggestVerbFirst,
		`This sentence needs the verb "kumain".`,
		"Missing particles: ang.",
		suggestStartOver,
	}, r.Suggestions)
}

func TestValidateIgnoresUnknownIDs(t *testing.T) {
	r := newTestValidator().Validate([]string{"kumain", "ako", "zzz"}, []string{"kumain", "ako", "qqq"})

	assert.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
	assert.Equal(t, 67, r.Score)
	assert.Equal(t, []string{suggestGeneric}, r.Suggestions)
}

func TestValidateScoreBounds(t *testing.T) {
	v := newTestValidator()
	pool := []string{"ang", "ng", "sa", "bahay", "aso", "bata", "malaki", "kumain", "ako", "???"}
	rng := rand.New(rand.NewSource(7))

	pick := func() []string {
		out := make([]string, rng.Intn(7))
		for i := range out {
			out[i] = pool[rng.Intn(len(pool))]
		}
		return out
	}

	for range 2000 {
		attempt, target := pick(), pick()
		r := v.Validate(attempt, target)
		require.GreaterOrEqual(t, r.Score, 0)
		require.LessOrEqual(t, r.Score, 100)
		require.NotEmpty(t, r.Suggestions)
		require.NotNil(t, r.Errors)
	}
}

func TestIdentifyPattern(t *testing.T) {
	v := newTestValidator()
	vocab := testVocabulary()
	lookup := func(ids ...string) []domain.VocabularyWord {
		out := make([]domain.VocabularyWord, len(ids))
		for i, id := range ids {
			out[i] = vocab[id]
		}
		return out
	}

	tests := []struct {
		ids  []string
		want Pattern
	}{
		{[]string{"kumain", "ako"}, PatternVerbPronoun},
		{[]string{"kumain", "ang", "bata"}, PatternVerbFocusNoun},
		{[]string{"malaki", "ang", "bahay"}, PatternAdjectiveFocusNoun},
		{[]string{"kumain", "ang", "aso", "ng", "bata"}, PatternVerbFocusNounPossessionNoun},
		{[]string{"kumain", "ng", "bata"}, PatternUnknown},
		{[]string{"kumain", "sa", "bata"}, PatternUnknown},
		{nil, PatternUnknown},
	}
	for _, tt := range tests {
		words := lookup(tt.ids...)
		first := v.IdentifyPattern(words)
		assert.Equal(t, tt.want, first, "%v", tt.ids)
		assert.Equal(t, first, v.IdentifyPattern(words), "identify must be stable")
	}

	custom := NewValidator(vocab, WithParticles([]string{"sa"}, nil))
	assert.Equal(t, PatternVerbFocusNoun, custom.IdentifyPattern(lookup("kumain", "sa", "bata")))
	assert.Equal(t, PatternUnknown, custom.IdentifyPattern(lookup("kumain", "ang", "bata")))
}

func TestGenerateHints(t *testing.T) {
	v := newTestValidator()
	target := []string{"malaki", "ang", "bahay"}

	t.Run("pattern hint when nothing submitted", func(t *testing.T) {
		hints := v.GenerateHints(target, nil)
		require.Len(t, hints, 1)
		assert.Contains(t, hints[0], "Adjective + ang + Noun")
	})

	t.Run("unknown pattern lists the types", func(t *testing.T) {
		hints := v.GenerateHints([]string{"bahay", "malaki"}, nil)
		assert.Equal(t, []string{"Build the sentence in this order: Noun + Adjective."}, hints)
	})

	t.Run("reveals only the next word", func(t *testing.T) {
		assert.Equal(t, []string{`Next word (particle): "ang".`}, v.GenerateHints(target, []string{"malaki"}))
		assert.Equal(t, []string{`Next word (noun): "bahay".`}, v.GenerateHints(target, []string{"malaki", "ang"}))
	})

	t.Run("nothing once the sentence is complete", func(t *testing.T) {
		assert.Empty(t, v.GenerateHints(target, target))
	})

	t.Run("unknown next word is skipped", func(t *testing.T) {
		assert.Empty(t, v.GenerateHints([]string{"kumain", "mystery"}, []string{"kumain"}))
	})
}
