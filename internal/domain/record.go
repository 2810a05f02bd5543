package domain

import (
	"fmt"
	"time"
)

// Bounds for the per-item scheduling state.
const (
	MinEase = 1.3
	MaxEase = 2.5

	MinDifficulty = 1
	MaxDifficulty = 5

	DefaultEase = 2.0
)

// Category is the kind of learnable item a review record tracks.
type Category string

const (
	CategoryLetter   Category = "letter"
	CategoryParticle Category = "particle"
	CategoryVerb     Category = "verb"
)

// AnyCategory is the empty filter: operations given it consider every record.
const AnyCategory Category = ""

// CategoryProfile holds the presentation behaviour attached to a category.
type CategoryProfile struct {
	Label  string
	Color  string // ANSI escape used by terminal output
	Prompt string
}

var categoryProfiles = map[Category]CategoryProfile{
	CategoryLetter: {
		Label:  "Letters",
		Color:  "\033[36m",
		Prompt: "Say the sound of each letter before revealing it.",
	},
	CategoryParticle: {
		Label:  "Particles",
		Color:  "\033[33m",
		Prompt: "Name the role of the particle and the word it marks.",
	},
	CategoryVerb: {
		Label:  "Verbs",
		Color:  "\033[35m",
		Prompt: "Give the conjugated form and its aspect.",
	},
}

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	return []Category{CategoryLetter, CategoryParticle, CategoryVerb}
}

// ParseCategory converts s into a Category, rejecting anything outside the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryProfiles[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	_, ok := categoryProfiles[c]
	return ok
}

// Profile returns the presentation profile of c. Unknown categories get a plain profile.
func (c Category) Profile() CategoryProfile {
	if p, ok := categoryProfiles[c]; ok {
		return p
	}
	return CategoryProfile{Label: string(c)}
}

// Matches reports whether c passes the filter. AnyCategory matches everything.
func (c Category) Matches(filter Category) bool {
	return filter == AnyCategory || c == filter
}

// ReviewRecord is the review state of a single learnable item.
type ReviewRecord struct {
	ItemID          string    `json:"itemId"`
	Category        Category  `json:"category"`
	LastReviewed    time.Time `json:"lastReviewed"`
	NextReview      time.Time `json:"nextReview"`
	DifficultyLevel int       `json:"difficultyLevel"`
	CorrectStreak   int       `json:"correctStreak"`
	TotalAttempts   int       `json:"totalAttempts"`
	CorrectAttempts int       `json:"correctAttempts"`
	Ease            float64   `json:"ease"`
}

// NewReviewRecord returns the state of an item answered for the first time at now.
func NewReviewRecord(itemID string, category Category, now time.Time) ReviewRecord {
	return ReviewRecord{
		ItemID:          itemID,
		Category:        category,
		LastReviewed:    now,
		NextReview:      now,
		DifficultyLevel: MinDifficulty,
		Ease:            DefaultEase,
	}
}

// Accuracy is the share of correct answers, or 0 for an unanswered item.
func (r ReviewRecord) Accuracy() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return float64(r.CorrectAttempts) / float64(r.TotalAttempts)
}

// IsDue reports whether the item may be reviewed at now.
func (r ReviewRecord) IsDue(now time.Time) bool {
	return !r.NextReview.After(now)
}

// Valid checks the record invariants. Records loaded from storage that fail
// this check are treated as absent.
func (r ReviewRecord) Valid() bool {
	switch {
	case r.ItemID == "":
		return false
	case !r.Category.Valid():
		return false
	case r.Ease < MinEase || r.Ease > MaxEase:
		return false
	case r.DifficultyLevel < MinDifficulty || r.DifficultyLevel > MaxDifficulty:
		return false
	case r.CorrectStreak < 0 || r.CorrectAttempts < 0:
		return false
	case r.CorrectAttempts > r.TotalAttempts:
		return false
	}
	return true
}

// AnswerLog records a single answer given for an item.
type AnswerLog struct {
	ItemID     string    `json:"itemId"`
	Category   Category  `json:"category"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}
