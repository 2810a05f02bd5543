package sentence

// Kind classifies a problem found in an attempted sentence.
type Kind string

const (
	KindParticleMissing   Kind = "particle_missing"
	KindParticleIncorrect Kind = "particle_incorrect"
	KindWordOrder         Kind = "word_order"
	KindIncompatibleWords Kind = "incompatible_words"
	KindGrammarError      Kind = "grammar_error"
)

// IsParticle reports whether the kind concerns particle usage.
func (k Kind) IsParticle() bool {
	return k == KindParticleMissing || k == KindParticleIncorrect
}

// Severity says how much a problem counts against the attempt.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// penalties are the points deducted from the score per issue.
var penalties = map[Severity]float64{
	SeverityError:   15,
	SeverityWarning: 5,
	SeverityInfo:    2,
}

// Penalty returns the score deduction for one issue of this severity.
func (s Severity) Penalty() float64 {
	return penalties[s]
}

// Issue is a single problem found in an attempt.
type Issue struct {
	Kind         Kind     `json:"kind"`
	Message      string   `json:"message"`
	WordIndex    *int     `json:"wordIndex,omitempty"`
	ExpectedWord string   `json:"expectedWord,omitempty"`
	Severity     Severity `json:"severity"`
}

// Report is the outcome of validating one attempt.
type Report struct {
	IsValid     bool     `json:"isValid"`
	Score       int      `json:"score"`
	Errors      []Issue  `json:"errors"`
	Suggestions []string `json:"suggestions"`
}

// HasKind reports whether any issue of the given kind was found.
func (r Report) HasKind(kind Kind) bool {
	for _, is := range r.Errors {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

func at(i int) *int { return &i }
