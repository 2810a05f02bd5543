package domain

import (
	"fmt"
	"sort"
	"strings"
)

// WordType is the grammatical role of a vocabulary word.
type WordType string

const (
	TypeParticle   WordType = "particle"
	TypeNoun       WordType = "noun"
	TypeVerb       WordType = "verb"
	TypeAdjective  WordType = "adjective"
	TypePronoun    WordType = "pronoun"
	TypeDeterminer WordType = "determiner"
	TypeLocation   WordType = "location"
	TypeTime       WordType = "time"
)

// ParseWordType converts s into a WordType, rejecting anything outside the closed set.
func ParseWordType(s string) (WordType, error) {
	switch t := WordType(s); t {
	case TypeParticle, TypeNoun, TypeVerb, TypeAdjective,
		TypePronoun, TypeDeterminer, TypeLocation, TypeTime:
		return t, nil
	default:
		return "", fmt.Errorf("unknown word type %q", s)
	}
}

// VocabularyWord is read-only reference data for a single word.
type VocabularyWord struct {
	ID      string   `json:"id" validate:"required"`
	Text    string   `json:"text" validate:"required"`
	Meaning string   `json:"meaning,omitempty"`
	Type    WordType `json:"type" validate:"required,oneof=particle noun verb adjective pronoun determiner location time"`
	// RequiresParticle lists particle ids one of which must directly precede the word.
	RequiresParticle []string `json:"requiresParticle,omitempty" validate:"dive,required"`
}

// Vocabulary is an immutable lookup table of words keyed by id.
type Vocabulary map[string]VocabularyWord

// Word returns the word with the given id.
func (v Vocabulary) Word(id string) (VocabularyWord, bool) {
	w, ok := v[id]
	return w, ok
}

// NewVocabulary indexes words by id. Later duplicates replace earlier ones.
func NewVocabulary(words ...VocabularyWord) Vocabulary {
	v := make(Vocabulary, len(words))
	for _, w := range words {
		v[w.ID] = w
	}
	return v
}

// Drill is a target sentence the learner has to build from word ids.
type Drill struct {
	ID          string   `json:"id"`
	Tokens      []string `json:"tokens" validate:"required,min=1,dive,required"`
	Translation string   `json:"translation,omitempty"`
}

// Catalog holds everything loaded from the configured decks.
type Catalog struct {
	Vocabulary Vocabulary
	Drills     map[string]Drill
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Vocabulary: make(Vocabulary),
		Drills:     make(map[string]Drill),
	}
}

// Drill looks up a drill by id.
func (c *Catalog) Drill(id string) (Drill, bool) {
	d, ok := c.Drills[id]
	return d, ok
}

// minDrillPrefix is the shortest id prefix FindDrill accepts.
const minDrillPrefix = 6

// FindDrill looks up a drill by its full id or by an unambiguous id prefix.
func (c *Catalog) FindDrill(idOrPrefix string) (Drill, bool) {
	if d, ok := c.Drills[idOrPrefix]; ok {
		return d, true
	}
	if len(idOrPrefix) < minDrillPrefix {
		return Drill{}, false
	}
	var found []Drill
	for id, d := range c.Drills {
		if strings.HasPrefix(id, idOrPrefix) {
			found = append(found, d)
		}
	}
	if len(found) != 1 {
		return Drill{}, false
	}
	return found[0], true
}

// DrillList returns all drills ordered by id.
func (c *Catalog) DrillList() []Drill {
	drills := make([]Drill, 0, len(c.Drills))
	for _, d := range c.Drills {
		drills = append(drills, d)
	}
	sort.Slice(drills, func(i, j int) bool { return drills[i].ID < drills[j].ID })
	return drills
}
