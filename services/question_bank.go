package services

import (
	"context"
	"fmt"
	"strings"

	"duel-bot/logger"
	"duel-bot/models"
)

// PackEntry is one question in an importable question pack.
type PackEntry struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuestionBank struct {
	Store Store
}

func NewQuestionBank(store Store) *QuestionBank {
	return &QuestionBank{Store: store}
}

// RandomQuestion draws uniformly from every stored question. nil means the bank is empty.
func (b *QuestionBank) RandomQuestion(ctx context.Context) (*models.Question, error) {
	q, err := b.Store.RandomQuestion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to draw question: %w", err)
	}
	return q, nil
}

// DisplayCategory resolves the name of the category that owns q.
func (b *QuestionBank) DisplayCategory(ctx context.Context, q *models.Question) (string, error) {
	if q.Category.Name != "" {
		return q.Category.Name, nil
	}
	c, err := b.Store.GetCategory(ctx, q.CategoryID)
	if err != nil {
		return "", fmt.Errorf("failed to load category: %w", err)
	}
	if c == nil {
		logger.Warn("question has no category", "question_id", q.ID, "category_id", q.CategoryID)
		return "Unknown", nil
	}
	return c.Name, nil
}

func (b *QuestionBank) RecordAsked(ctx context.Context, questionID string) error {
	return b.Store.IncrementQuestion(ctx, questionID, "times_asked")
}

func (b *QuestionBank) RecordUnanswered(ctx context.Context, questionID string) error {
	return b.Store.IncrementQuestion(ctx, questionID, "times_not_answered")
}

func (b *QuestionBank) Categories(ctx context.Context) ([]models.Category, error) {
	return b.Store.ListCategories(ctx)
}

// EnsureCategory returns the category with the given name or slug, creating it when absent.
func (b *QuestionBank) EnsureCategory(ctx context.Context, name, submitterID string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty")
	}
	c, err := b.Store.FindCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	c = &models.Category{Name: name, SubmitterID: submitterID}
	if err := b.Store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return c, nil
}

// AddQuestion stores a question under an existing category, matched by name or slug.
func (b *QuestionBank) AddQuestion(ctx context.Context, category, question, answer, submitterID string) (*models.Question, error) {
	question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, ErrEmptyQuestion
	}
	c, err := b.Store.FindCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound(MsgCategoryNotFound)
	}
	q := &models.Question{
		Question:    question,
		Answer:      answer,
		CategoryID:  c.ID,
		SubmitterID: submitterID,
	}
	if err := b.Store.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	q.Category = *c
	return q, nil
}

// Import stores every complete, not yet known entry of a pack in one transaction,
// creating categories as needed. It returns the number of questions added.
func (b *QuestionBank) Import(ctx context.Context, pack []PackEntry, submitterID string) (int, error) {
	imported := 0
	err := b.Store.WithTx(ctx, func(tx Store) error {
		bank := NewQuestionBank(tx)
		categories := make(map[string]*models.Category)
		for _, entry := range pack {
			if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
				logger.Warn("skipping incomplete pack entry", "category", entry.Category)
				continue
			}
			key := strings.ToLower(strings.TrimSpace(entry.Category))
			c, ok := categories[key]
			if !ok {
				var err error
				c, err = bank.EnsureCategory(ctx, entry.Category, submitterID)
				if err != nil {
					return err
				}
				categories[key] = c
			}
			exists, err := tx.QuestionExists(ctx, c.ID, strings.TrimSpace(entry.Question))
			if err != nil {
				return fmt.Errorf("failed to check question: %w", err)
			}
			if exists {
				continue
			}
			q := &models.Question{
				Question:    strings.TrimSpace(entry.Question),
				Answer:      strings.TrimSpace(entry.Answer),
				CategoryID:  c.ID,
				SubmitterID: submitterID,
			}
			if err := tx.CreateQuestion(ctx, q); err != nil {
				return fmt.Errorf("failed to import question: %w", err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}
