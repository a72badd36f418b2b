// handlers/admin_routes.go
package handlers

import (
	"errors"
	"strings"

	"duel-bot/logger"
	"duel-bot/middleware"
	"duel-bot/services"

	"github.com/gofiber/fiber/v2"
)

type grantPointsRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}

type createQuestionRequest struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (a *API) GrantPoints(c *fiber.Ctx) error {
	var req grantPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if req.Username == "" || req.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and non-zero amount are required"})
	}

	chatter, err := a.Economy.Grant(c.UserContext(), req.Username, req.Amount)
	if services.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "chatter not found"})
	}
	if err != nil {
		logger.Error("failed to grant points", "username", req.Username, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to grant points"})
	}

	logger.Info("admin granted points", "admin_id", middleware.AdminID(c), "username", chatter.Username, "amount", req.Amount)
	return c.JSON(chatter)
}

func (a *API) CreateQuestion(c *fiber.Ctx) error {
	var req createQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	q, err := a.Bank.AddQuestion(c.UserContext(), req.Category, req.Question, req.Answer, middleware.AdminID(c))
	switch {
	case errors.Is(err, services.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
	case err != nil:
		logger.Error("failed to create question", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create question"})
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// ImportQuestions stores a question pack, creating missing categories.
func (a *API) ImportQuestions(c *fiber.Ctx) error {
	var pack []services.PackEntry
	if err := c.BodyParser(&pack); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	n, err := a.Bank.Import(c.UserContext(), pack, middleware.AdminID(c))
	if err != nil {
		logger.Error("failed to import questions", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to import questions"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": n})
}
