package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"duel-bot/events"
	"duel-bot/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewGormStore(db)
	require.NoError(t, store.Migrate())
	return store
}

func seedChatter(t *testing.T, store Store, twitchID, username string, points int64) *models.Chatter {
	t.Helper()
	c := &models.Chatter{
		TwitchID: twitchID,
		Username: username,
		Points:   points,
		LastSeen: time.Now(),
	}
	require.NoError(t, store.SaveChatter(context.Background(), c))
	return c
}

func seedQuestion(t *testing.T, store Store, category, question, answer string) *models.Question {
	t.Helper()
	ctx := context.Background()

	cat, err := store.FindCategory(ctx, category)
	require.NoError(t, err)
	if cat == nil {
		cat = &models.Category{Name: category, SubmitterID: "test"}
		require.NoError(t, store.CreateCategory(ctx, cat))
	}
	q := &models.Question{
		Question:    question,
		Answer:      answer,
		CategoryID:  cat.ID,
		SubmitterID: "test",
	}
	require.NoError(t, store.CreateQuestion(ctx, q))
	return q
}

func mustChatter(t *testing.T, store Store, twitchID string) *models.Chatter {
	t.Helper()
	c, err := store.GetChatter(context.Background(), twitchID)
	require.NoError(t, err)
	require.NotNil(t, c, "chatter %s", twitchID)
	return c
}

func mustDuel(t *testing.T, store Store, id string) *models.Duel {
	t.Helper()
	d, err := store.GetDuel(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, d, "duel %s", id)
	return d
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, string(e.Kind))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
