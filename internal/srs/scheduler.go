package srs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/conorfennell/salita/internal/domain"
)

const (
	easeBonus   = 0.1
	easePenalty = 0.2

	// streakForEaseBonus is the streak at which each further correct answer raises ease.
	streakForEaseBonus = 2
	// streakForGraduation is the streak that moves an item up one difficulty tier.
	streakForGraduation = 3

	difficultMinAttempts = 3
	difficultAccuracy    = 0.70
	masteredDifficulty   = 4
	masteredAccuracy     = 0.90

	day = 24 * time.Hour
)

// baseIntervals maps a difficulty tier to its review interval in days.
var baseIntervals = map[int]float64{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

// Store is the persistence the scheduler reads and writes records through.
// Get returns nil, nil when no usable record exists.
type Store interface {
	Get(ctx context.Context, itemID string) (*domain.ReviewRecord, error)
	Set(ctx context.Context, record domain.ReviewRecord) error
	GetAll(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error)
	Delete(ctx context.Context, itemID string) error
}

// AnswerLogger is implemented by stores that keep a per-answer history.
type AnswerLogger interface {
	AppendAnswer(ctx context.Context, entry domain.AnswerLog) error
	History(ctx context.Context, itemID string) ([]domain.AnswerLog, error)
}

// Stats summarises the records of one category, or all of them.
type Stats struct {
	Total        int `json:"total"`
	Mastered     int `json:"mastered"`
	Learning     int `json:"learning"`
	Difficult    int `json:"difficult"`
	DueForReview int `json:"dueForReview"`
}

// Scheduler decides when each item should be reviewed next.
type Scheduler struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger used for degraded-state warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler persisting through store.
func NewScheduler(store Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordAnswer applies one answer to the item's record, persists it and returns it.
func (s *Scheduler) RecordAnswer(ctx context.Context, itemID string, category domain.Category, isCorrect bool) (domain.ReviewRecord, error) {
	now := s.now()

	record, err := s.load(ctx, itemID)
	if err != nil {
		return domain.ReviewRecord{}, err
	}
	if record == nil {
		fresh := domain.NewReviewRecord(itemID, category, now)
		record = &fresh
	}
	record.Category = category

	next := Apply(*record, isCorrect, now)

	if err := s.store.Set(ctx, next); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("failed to save review record %s: %w", itemID, err)
	}
	if l, ok := s.store.(AnswerLogger); ok {
		entry := domain.AnswerLog{ItemID: itemID, Category: category, Correct: isCorrect, AnsweredAt: now}
		if err := l.AppendAnswer(ctx, entry); err != nil {
			s.logger.Warn("Failed to append answer log", "item_id", itemID, "error", err)
		}
	}

	s.logger.Debug("answer recorded",
		"item_id", itemID,
		"correct", isCorrect,
		"difficulty", next.DifficultyLevel,
		"ease", next.Ease,
		"next_review", next.NextReview,
	)
	return next, nil
}

// Apply computes the record that results from answering r at now.
func Apply(r domain.ReviewRecord, isCorrect bool, now time.Time) domain.ReviewRecord {
	r.TotalAttempts++
	r.LastReviewed = now

	if !isCorrect {
		r.CorrectStreak = 0
		r.Ease = adjustEase(r.Ease, -easePenalty)
		r.DifficultyLevel = domain.Clamp(r.DifficultyLevel-1, domain.MinDifficulty, domain.MaxDifficulty)
		r.NextReview = now.Add(day)
		return r
	}

	r.CorrectAttempts++
	r.CorrectStreak++
	if r.CorrectStreak >= streakForEaseBonus {
		r.Ease = adjustEase(r.Ease, easeBonus)
	}

	// The interval uses the tier the item was answered at, before any graduation.
	r.NextReview = now.Add(Interval(r.DifficultyLevel, r.Ease))

	if r.CorrectStreak >= streakForGraduation && r.DifficultyLevel < domain.MaxDifficulty {
		r.DifficultyLevel = domain.Clamp(r.DifficultyLevel+1, domain.MinDifficulty, domain.MaxDifficulty)
		r.CorrectStreak = 0
	}
	return r
}

// Interval returns the review gap for a tier and ease, rounded to whole days.
func Interval(difficulty int, ease float64) time.Duration {
	base := baseIntervals[domain.Clamp(difficulty, domain.MinDifficulty, domain.MaxDifficulty)]
	days := math.Round(base * ease)
	return time.Duration(days) * day
}

// adjustEase applies delta, clamps to the allowed range and drops float noise
// below two decimals.
func adjustEase(ease, delta float64) float64 {
	e := math.Round((ease+delta)*100) / 100
	return domain.Clamp(e, domain.MinEase, domain.MaxEase)
}

// DueForReview returns the records whose next review is not in the future,
// earliest first.
func (s *Scheduler) DueForReview(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error) {
	records, err := s.all(ctx, category)
	if err != nil {
		return nil, err
	}
	now := s.now()

	due := make([]domain.ReviewRecord, 0, len(records))
	for _, r := range records {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].ItemID < due[j].ItemID
	})
	return due, nil
}

// DifficultCards returns records with enough attempts and low accuracy, worst first.
func (s *Scheduler) DifficultCards(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error) {
	records, err := s.all(ctx, category)
	if err != nil {
		return nil, err
	}

	var difficult []domain.ReviewRecord
	for _, r := range records {
		if isDifficult(r) {
			difficult = append(difficult, r)
		}
	}
	sort.Slice(difficult, func(i, j int) bool {
		ai, aj := difficult[i].Accuracy(), difficult[j].Accuracy()
		if ai != aj {
			return ai < aj
		}
		return difficult[i].ItemID < difficult[j].ItemID
	})
	return difficult, nil
}

// Stats buckets every record as mastered, difficult or learning, and counts due ones.
func (s *Scheduler) Stats(ctx context.Context, category domain.Category) (Stats, error) {
	records, err := s.all(ctx, category)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()

	var st Stats
	for _, r := range records {
		st.Total++
		// Precedence: mastered, then difficult, then learning.
		switch {
		case isMastered(r):
			st.Mastered++
		case isDifficult(r):
			st.Difficult++
		default:
			st.Learning++
		}
		if r.IsDue(now) {
			st.DueForReview++
		}
	}
	return st, nil
}

// Reset forgets everything about an item; it becomes unseen again.
func (s *Scheduler) Reset(ctx context.Context, itemID string) error {
	if err := s.store.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to reset %s: %w", itemID, err)
	}
	s.logger.Info("Review record reset", "item_id", itemID)
	return nil
}

// Record returns the current record of an item, or nil if it is unseen.
func (s *Scheduler) Record(ctx context.Context, itemID string) (*domain.ReviewRecord, error) {
	return s.load(ctx, itemID)
}

// History returns the answers given for an item, newest first. Stores without
// an answer log yield an empty history.
func (s *Scheduler) History(ctx context.Context, itemID string) ([]domain.AnswerLog, error) {
	l, ok := s.store.(AnswerLogger)
	if !ok {
		return nil, nil
	}
	entries, err := l.History(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", itemID, err)
	}
	return entries, nil
}

func (s *Scheduler) load(ctx context.Context, itemID string) (*domain.ReviewRecord, error) {
	record, err := s.store.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review record %s: %w", itemID, err)
	}
	if record != nil && !record.Valid() {
		s.logger.Warn("Discarding invalid review record", "item_id", itemID)
		return nil, nil
	}
	return record, nil
}

func (s *Scheduler) all(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error) {
	records, err := s.store.GetAll(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}
	valid := records[:0:0]
	for _, r := range records {
		if !r.Valid() || !r.Category.Matches(category) {
			continue
		}
		valid = append(valid, r)
	}
	return valid, nil
}

func isDifficult(r domain.ReviewRecord) bool {
	return r.TotalAttempts >= difficultMinAttempts && r.Accuracy() < difficultAccuracy
}

func isMastered(r domain.ReviewRecord) bool {
	return r.DifficultyLevel >= masteredDifficulty && r.Accuracy() >= masteredAccuracy
}
