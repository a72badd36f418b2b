// handlers/routes.go
package handlers

import (
	"duel-bot/logger"
	"duel-bot/middleware"
	"duel-bot/models"
	"duel-bot/services"

	"github.com/gofiber/fiber/v2"
)

// API serves read access to the game state and the admin operations.
type API struct {
	Store   services.Store
	Stats   *services.StatsService
	Economy *services.EconomyService
	Bank    *services.QuestionBank
}

func NewAPI(store services.Store) *API {
	return &API{
		Store:   store,
		Stats:   services.NewStatsService(store),
		Economy: services.NewEconomyService(store),
		Bank:    services.NewQuestionBank(store),
	}
}

func SetupPublicRoutes(app *fiber.App, api *API) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/leaderboard", api.Leaderboard)
	app.Get("/chatters/:username", api.GetChatter)
	app.Get("/duels/:id", api.GetDuel)
	app.Get("/categories", api.ListCategories)
}

// 🔐 Admin routes require the service token
func SetupAdminRoutes(app *fiber.App, api *API, serviceToken string) {
	admin := app.Group("/admin", middleware.ServiceTokenMiddleware(serviceToken), middleware.AdminContextMiddleware())

	admin.Post("/points", api.GrantPoints)
	admin.Post("/questions", api.CreateQuestion)
	admin.Post("/questions/import", api.ImportQuestions)
}

type chatterResponse struct {
	models.Chatter
	Rank int64 `json:"rank"`
}

func (a *API) Leaderboard(c *fiber.Ctx) error {
	chatters, err := a.Stats.Leaderboard(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		logger.Error("failed to load leaderboard", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}
	return c.JSON(chatters)
}

func (a *API) GetChatter(c *fiber.Ctx) error {
	ctx := c.UserContext()
	chatter, err := a.Store.GetChatterByName(ctx, c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if chatter == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chatter not found"})
	}
	rank, err := a.Stats.Rank(ctx, chatter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(chatterResponse{Chatter: *chatter, Rank: rank})
}

func (a *API) GetDuel(c *fiber.Ctx) error {
	duel, err := a.Store.GetDuel(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if duel == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "duel not found"})
	}
	return c.JSON(duel)
}

func (a *API) ListCategories(c *fiber.Ctx) error {
	categories, err := a.Bank.Categories(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch categories"})
	}
	return c.JSON(categories)
}
