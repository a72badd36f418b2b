package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionBank_EmptyBank(t *testing.T) {
	bank := NewQuestionBank(newTestStore(t))

	q, err := bank.RandomQuestion(context.Background())
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestQuestionBank_RandomQuestionAndCounters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seeded := seedQuestion(t, store, "Word Scramble", "lopo", "pool")
	bank := NewQuestionBank(store)

	q, err := bank.RandomQuestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, seeded.ID, q.ID)

	name, err := bank.DisplayCategory(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "Word Scramble", name)

	require.NoError(t, bank.RecordAsked(ctx, q.ID))
	require.NoError(t, bank.RecordAsked(ctx, q.ID))
	require.NoError(t, bank.RecordUnanswered(ctx, q.ID))

	var reloaded struct {
		TimesAsked       int64
		TimesNotAnswered int64
	}
	require.NoError(t, store.DB.Table("questions").Where("id = ?", q.ID).
		Select("times_asked, times_not_answered").Scan(&reloaded).Error)
	assert.Equal(t, int64(2), reloaded.TimesAsked)
	assert.Equal(t, int64(1), reloaded.TimesNotAnswered)
}

func TestQuestionBank_AddQuestion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bank := NewQuestionBank(store)

	_, err := bank.AddQuestion(ctx, "general", "2+2", "4", "b1")
	assert.True(t, IsNotFound(err))

	_, err = bank.EnsureCategory(ctx, "General", "b1")
	require.NoError(t, err)

	q, err := bank.AddQuestion(ctx, "general", " 2+2 ", " 4 ", "b1")
	require.NoError(t, err)
	assert.Equal(t, "2+2", q.Question)
	assert.Equal(t, "4", q.Answer)
	assert.Equal(t, "General", q.Category.Name)

	_, err = bank.AddQuestion(ctx, "general", "", "4", "b1")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestQuestionBank_ImportSkipsIncomplete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bank := NewQuestionBank(store)

	n, err := bank.Import(ctx, []PackEntry{
		{Category: "Geography", Question: "capital of France", Answer: "paris"},
		{Category: "geography", Question: "capital of Italy", Answer: "rome"},
		{Category: "Geography", Question: "", Answer: "nowhere"},
	}, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	categories, err := bank.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "geography", categories[0].Slug)

	n, err = bank.Import(ctx, []PackEntry{
		{Category: "Geography", Question: "Capital of France", Answer: "paris"},
		{Category: "Geography", Question: "capital of Spain", Answer: "madrid"},
	}, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSeedQuestionBank_OnlyWhenEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bank := NewQuestionBank(store)

	require.NoError(t, SeedQuestionBank(ctx, bank, "b1"))
	count, err := store.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(starterQuestions)), count)

	categories, err := bank.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(starterCategories))

	require.NoError(t, SeedQuestionBank(ctx, bank, "b1"))
	count, err = store.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(starterQuestions)), count)
}
