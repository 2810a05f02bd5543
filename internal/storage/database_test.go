package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/salita/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "salita.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(id string, category domain.Category, next time.Time) domain.ReviewRecord {
	r := domain.NewReviewRecord(id, category, next.Add(-24*time.Hour))
	r.NextReview = next
	r.TotalAttempts = 4
	r.CorrectAttempts = 3
	r.CorrectStreak = 1
	r.DifficultyLevel = 2
	r.Ease = 2.1
	return r
}

func TestDBRecords(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	now := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

	t.Run("missing record", func(t *testing.T) {
		r, err := db.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("set and get round trip", func(t *testing.T) {
		want := sampleRecord("ang", domain.CategoryParticle, now)
		require.NoError(t, db.Set(ctx, want))

		got, err := db.Get(ctx, "ang")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ItemID, got.ItemID)
		assert.Equal(t, want.Category, got.Category)
		assert.True(t, want.NextReview.Equal(got.NextReview))
		assert.True(t, want.LastReviewed.Equal(got.LastReviewed))
		assert.Equal(t, want.DifficultyLevel, got.DifficultyLevel)
		assert.Equal(t, want.TotalAttempts, got.TotalAttempts)
		assert.Equal(t, want.CorrectAttempts, got.CorrectAttempts)
		assert.InDelta(t, want.Ease, got.Ease, 1e-9)
	})

	t.Run("set replaces", func(t *testing.T) {
		r := sampleRecord("ang", domain.CategoryParticle, now)
		r.TotalAttempts = 9
		require.NoError(t, db.Set(ctx, r))

		got, err := db.Get(ctx, "ang")
		require.NoError(t, err)
		assert.Equal(t, 9, got.TotalAttempts)
	})

	t.Run("get all filters by category", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, sampleRecord("kumain", domain.CategoryVerb, now)))
		require.NoError(t, db.Set(ctx, sampleRecord("a", domain.CategoryLetter, now)))

		all, err := db.GetAll(ctx, domain.AnyCategory)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		verbs, err := db.GetAll(ctx, domain.CategoryVerb)
		require.NoError(t, err)
		require.Len(t, verbs, 1)
		assert.Equal(t, "kumain", verbs[0].ItemID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, db.Delete(ctx, "kumain"))
		r, err := db.Get(ctx, "kumain")
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}

func TestDBMalformedRowsAreAbsent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	now := time.Now().UTC()

	require.NoError(t, db.Set(ctx, sampleRecord("good", domain.CategoryLetter, now)))

	_, err := db.conn.Exec(`
		INSERT INTO review_records (`+recordColumns+`)
		VALUES ('bad-time', 'letter', 'yesterday', 'tomorrow', 1, 0, 0, 0, 2.0),
		       ('bad-category', 'noun', ?, ?, 1, 0, 0, 0, 2.0),
		       ('bad-counters', 'verb', ?, ?, 1, 0, 1, 5, 2.0),
		       ('bad-ease', 'verb', ?, ?, 1, 0, 0, 0, 'high')
	`,
		now.Format(timeLayout), now.Format(timeLayout),
		now.Format(timeLayout), now.Format(timeLayout),
		now.Format(timeLayout), now.Format(timeLayout),
	)
	require.NoError(t, err)

	for _, id := range []string{"bad-time", "bad-category", "bad-counters", "bad-ease"} {
		r, err := db.Get(ctx, id)
		require.NoError(t, err, id)
		assert.Nil(t, r, id)
	}

	all, err := db.GetAll(ctx, domain.AnyCategory)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].ItemID)
}

func TestDBAnswerLog(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, correct := range []bool{true, false, true} {
		require.NoError(t, db.AppendAnswer(ctx, domain.AnswerLog{
			ItemID:     "ng",
			Category:   domain.CategoryParticle,
			Correct:    correct,
			AnsweredAt: start.Add(time.Duration(i) * time.Hour),
		}))
	}

	history, err := db.History(ctx, "ng")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].AnsweredAt.Equal(start.Add(2*time.Hour)))
	assert.False(t, history[1].Correct)

	require.NoError(t, db.Set(ctx, sampleRecord("ng", domain.CategoryParticle, start)))
	require.NoError(t, db.Delete(ctx, "ng"))
	history, err = db.History(ctx, "ng")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()

	r, err := m.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, r)

	require.NoError(t, m.Set(ctx, sampleRecord("b", domain.CategoryLetter, now)))
	require.NoError(t, m.Set(ctx, sampleRecord("a", domain.CategoryVerb, now)))

	all, err := m.GetAll(ctx, domain.AnyCategory)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ItemID)

	letters, err := m.GetAll(ctx, domain.CategoryLetter)
	require.NoError(t, err)
	assert.Len(t, letters, 1)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	got.TotalAttempts = 100
	again, _ := m.Get(ctx, "a")
	assert.Equal(t, 4, again.TotalAttempts, "Get must return a copy")

	require.NoError(t, m.AppendAnswer(ctx, domain.AnswerLog{ItemID: "a", Correct: true}))
	require.NoError(t, m.AppendAnswer(ctx, domain.AnswerLog{ItemID: "a", Correct: false}))
	history, err := m.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].Correct)

	require.NoError(t, m.Delete(ctx, "a"))
	got, err = m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
