package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"duel-bot/models"
	"duel-bot/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testToken = "secret"

func setupApp(t *testing.T) (*fiber.App, *services.GormStore) {
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

	store := services.NewGormStore(db)
	require.NoError(t, store.Migrate())

	ctx := context.Background()
	for i, name := range []string{"Bob", "Alice", "Carol"} {
		require.NoError(t, store.SaveChatter(ctx, &models.Chatter{
			TwitchID: fmt.Sprint(i + 1),
			Username: name,
			Points:   int64((i + 1) * 100),
			LastSeen: time.Now(),
		}))
	}

	app := fiber.New()
	api := NewAPI(store)
	SetupPublicRoutes(app, api)
	SetupAdminRoutes(app, api, testToken)
	return app, store
}

func do(t *testing.T, app *fiber.App, method, path, body string, authed bool) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHealthz(t *testing.T) {
	app, _ := setupApp(t)
	status, body := do(t, app, "GET", "/healthz", "", false)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestLeaderboard(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, "GET", "/leaderboard?limit=2", "", false)
	require.Equal(t, fiber.StatusOK, status)

	var chatters []models.Chatter
	require.NoError(t, json.Unmarshal(body, &chatters))
	require.Len(t, chatters, 2)
	assert.Equal(t, "Carol", chatters[0].Username)
	assert.Equal(t, "Alice", chatters[1].Username)
}

func TestGetChatter(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, "GET", "/chatters/alice", "", false)
	require.Equal(t, fiber.StatusOK, status)
	var got struct {
		Username string `json:"username"`
		Points   int64  `json:"points"`
		Rank     int64  `json:"rank"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, int64(200), got.Points)
	assert.Equal(t, int64(2), got.Rank)

	status, _ = do(t, app, "GET", "/chatters/nobody", "", false)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetDuelHidesAnswer(t *testing.T) {
	app, store := setupApp(t)
	answer := "pool"
	d := &models.Duel{
		Challenger: "Bob", Challenged: "Alice", ChallengerID: "1", ChallengedID: "2",
		Points: 100, Status: models.DuelStatusAccepted, Answer: &answer,
	}
	require.NoError(t, store.CreateDuel(context.Background(), d))

	status, body := do(t, app, "GET", "/duels/"+d.ID, "", false)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(body), "pool")
	assert.Contains(t, string(body), `"status":"accepted"`)

	status, _ = do(t, app, "GET", "/duels/"+uuid.NewString(), "", false)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminGrantPoints(t *testing.T) {
	app, store := setupApp(t)

	status, _ := do(t, app, "POST", "/admin/points", `{"username":"bob","amount":50}`, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "POST", "/admin/points", `{"username":"@bob","amount":50}`, true)
	assert.Equal(t, fiber.StatusOK, status)
	c, err := store.GetChatter(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), c.Points)

	status, _ = do(t, app, "POST", "/admin/points", `{"username":"nobody","amount":50}`, true)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(t, app, "POST", "/admin/points", `{"username":"bob"}`, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminQuestions(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, "POST", "/admin/questions/import",
		`[{"category":"Word Scramble","question":"lopo","answer":"pool"},{"category":"Word Scramble","question":"","answer":"x"}]`, true)
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"imported":1}`, string(body))

	status, _ = do(t, app, "POST", "/admin/questions", `{"category":"word-scramble","question":"ulot","answer":"tolu"}`, true)
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = do(t, app, "POST", "/admin/questions", `{"category":"movies","question":"q","answer":"a"}`, true)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(t, app, "POST", "/admin/questions", `{"category":"word-scramble","question":" ","answer":"a"}`, true)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "GET", "/categories", "", false)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"slug":"word-scramble"`)
}
