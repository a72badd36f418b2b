package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"duel-bot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable side of the bot. Lookups return (nil, nil) when the row is absent.
type Store interface {
	// WithTx runs fn against a Store bound to a single transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	GetChatter(ctx context.Context, twitchID string) (*models.Chatter, error)
	GetChatterByName(ctx context.Context, username string) (*models.Chatter, error)
	SaveChatter(ctx context.Context, c *models.Chatter) error
	// UpdateChatter loads, mutates and saves a chatter as one locked unit.
	UpdateChatter(ctx context.Context, twitchID string, fn func(c *models.Chatter) error) (*models.Chatter, error)
	TopChatters(ctx context.Context, orderBy string, limit int) ([]models.Chatter, error)
	CountChattersAbove(ctx context.Context, points int64) (int64, error)

	CreateDuel(ctx context.Context, d *models.Duel) error
	GetDuel(ctx context.Context, id string) (*models.Duel, error)
	ListChallenged(ctx context.Context) ([]models.Duel, error)
	ListChallengesFor(ctx context.Context, challengedID string) ([]models.Duel, error)
	SetAccepted(ctx context.Context, duelID string) error
	SetQuestion(ctx context.Context, duelID string, q *models.Question, category string) error
	CreateAccepted(ctx context.Context, a *models.AcceptedDuel) error
	GetAccepted(ctx context.Context, participantID string) (*models.AcceptedDuel, error)
	DestroyAccepted(ctx context.Context, duelID string) error
	Complete(ctx context.Context, duelID string, winner *models.Chatter) error
	DecrementGuess(ctx context.Context, duelID string, isChallenger bool) (*models.Duel, error)

	RandomQuestion(ctx context.Context) (*models.Question, error)
	CreateQuestion(ctx context.Context, q *models.Question) error
	QuestionExists(ctx context.Context, categoryID, question string) (bool, error)
	IncrementQuestion(ctx context.Context, questionID, column string) error
	CountQuestions(ctx context.Context) (int64, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	FindCategory(ctx context.Context, nameOrSlug string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateLurker(ctx context.Context, l *models.Lurker) error
	DeleteLurker(ctx context.Context, twitchID string) (bool, error)
	ListLurkers(ctx context.Context) ([]models.Lurker, error)
}

var ErrInvalidTransition = errors.New("duel status transition rejected")

// GormStore implements Store on top of gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Migrate creates or updates every table the bot needs.
func (s *GormStore) Migrate() error {
	if err := s.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) first(ctx context.Context, out interface{}, query string, args ...interface{}) (bool, error) {
	err := s.DB.WithContext(ctx).Where(query, args...).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- Chatters ---

func (s *GormStore) GetChatter(ctx context.Context, twitchID string) (*models.Chatter, error) {
	var c models.Chatter
	found, err := s.first(ctx, &c, "twitch_id = ?", twitchID)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) GetChatterByName(ctx context.Context, username string) (*models.Chatter, error) {
	var c models.Chatter
	found, err := s.first(ctx, &c, "LOWER(username) = ?", strings.ToLower(username))
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) SaveChatter(ctx context.Context, c *models.Chatter) error {
	return s.DB.WithContext(ctx).Save(c).Error
}

func (s *GormStore) UpdateChatter(ctx context.Context, twitchID string, fn func(c *models.Chatter) error) (*models.Chatter, error) {
	var c models.Chatter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("twitch_id = ?", twitchID).First(&c).Error; err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		return tx.Save(&c).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var chatterOrderings = map[string]string{
	"wins":   "wins DESC, losses ASC",
	"points": "points DESC",
}

func (s *GormStore) TopChatters(ctx context.Context, orderBy string, limit int) ([]models.Chatter, error) {
	order, ok := chatterOrderings[orderBy]
	if !ok {
		return nil, fmt.Errorf("unknown chatter ordering %q", orderBy)
	}
	var chatters []models.Chatter
	err := s.DB.WithContext(ctx).Order(order).Order("username ASC").Limit(limit).Find(&chatters).Error
	return chatters, err
}

func (s *GormStore) CountChattersAbove(ctx context.Context, points int64) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Chatter{}).Where("points > ?", points).Count(&count).Error
	return count, err
}

// --- Duels ---

func (s *GormStore) CreateDuel(ctx context.Context, d *models.Duel) error {
	return s.DB.WithContext(ctx).Create(d).Error
}

func (s *GormStore) GetDuel(ctx context.Context, id string) (*models.Duel, error) {
	var d models.Duel
	found, err := s.first(ctx, &d, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) ListChallenged(ctx context.Context) ([]models.Duel, error) {
	var duels []models.Duel
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.DuelStatusChallenged).
		Order("created_at ASC").
		Find(&duels).Error
	return duels, err
}

func (s *GormStore) ListChallengesFor(ctx context.Context, challengedID string) ([]models.Duel, error) {
	var duels []models.Duel
	err := s.DB.WithContext(ctx).
		Where("status = ? AND challenged_id = ?", models.DuelStatusChallenged, challengedID).
		Order("created_at ASC").
		Find(&duels).Error
	return duels, err
}

var duelStatuses = []models.DuelStatus{
	models.DuelStatusChallenged,
	models.DuelStatusAccepted,
	models.DuelStatusCompleted,
}

// transition moves a duel into status to, but only from a status whose Next is to,
// and applies extra column updates alongside.
func (s *GormStore) transition(ctx context.Context, duelID string, to models.DuelStatus, updates map[string]interface{}) error {
	var from []models.DuelStatus
	for _, status := range duelStatuses {
		if next, ok := status.Next(); ok && next == to {
			from = append(from, status)
		}
	}
	if len(from) == 0 {
		return fmt.Errorf("%w: nothing moves to %s", ErrInvalidTransition, to)
	}

	updates["status"] = to
	res := s.DB.WithContext(ctx).Model(&models.Duel{}).
		Where("id = ? AND status IN ?", duelID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: duel %s", ErrInvalidTransition, duelID)
	}
	return nil
}

func (s *GormStore) SetAccepted(ctx context.Context, duelID string) error {
	return s.transition(ctx, duelID, models.DuelStatusAccepted, map[string]interface{}{})
}

// SetQuestion attaches the question once; a duel that already has one is left untouched.
func (s *GormStore) SetQuestion(ctx context.Context, duelID string, q *models.Question, category string) error {
	res := s.DB.WithContext(ctx).Model(&models.Duel{}).
		Where("id = ? AND status = ? AND question IS NULL", duelID, models.DuelStatusAccepted).
		Updates(map[string]interface{}{
			"question_id": q.ID,
			"question":    q.Question,
			"answer":      q.Answer,
			"category":    category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: question already set on duel %s", ErrInvalidTransition, duelID)
	}
	return nil
}

func (s *GormStore) CreateAccepted(ctx context.Context, a *models.AcceptedDuel) error {
	return s.DB.WithContext(ctx).Create(a).Error
}

func (s *GormStore) GetAccepted(ctx context.Context, participantID string) (*models.AcceptedDuel, error) {
	var a models.AcceptedDuel
	found, err := s.first(ctx, &a, "challenger_id = ? OR challenged_id = ?", participantID, participantID)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) DestroyAccepted(ctx context.Context, duelID string) error {
	return s.DB.WithContext(ctx).Where("duel_id = ?", duelID).Delete(&models.AcceptedDuel{}).Error
}

// Complete marks an accepted duel terminal. winner may be nil for ties and stale cancellations.
func (s *GormStore) Complete(ctx context.Context, duelID string, winner *models.Chatter) error {
	updates := map[string]interface{}{}
	if winner != nil {
		updates["winner"] = winner.Username
		updates["winner_id"] = winner.TwitchID
	}
	return s.transition(ctx, duelID, models.DuelStatusCompleted, updates)
}

func (s *GormStore) DecrementGuess(ctx context.Context, duelID string, isChallenger bool) (*models.Duel, error) {
	column := "challenged_guesses"
	if isChallenger {
		column = "challenger_guesses"
	}
	res := s.DB.WithContext(ctx).Model(&models.Duel{}).
		Where("id = ? AND status = ? AND "+column+" > 0", duelID, models.DuelStatusAccepted).
		Update(column, gorm.Expr(column+" - 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: no guesses left on duel %s", ErrInvalidTransition, duelID)
	}
	return s.GetDuel(ctx, duelID)
}

// --- Questions ---

func (s *GormStore) RandomQuestion(ctx context.Context) (*models.Question, error) {
	var q models.Question
	err := s.DB.WithContext(ctx).Order("RANDOM()").Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *GormStore) CreateQuestion(ctx context.Context, q *models.Question) error {
	return s.DB.WithContext(ctx).Omit(clause.Associations).Create(q).Error
}

func (s *GormStore) QuestionExists(ctx context.Context, categoryID, question string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Question{}).
		Where("category_id = ? AND LOWER(question) = LOWER(?)", categoryID, question).
		Count(&count).Error
	return count > 0, err
}

var questionCounters = map[string]bool{
	"times_asked":        true,
	"times_not_answered": true,
}

func (s *GormStore) IncrementQuestion(ctx context.Context, questionID, column string) error {
	if !questionCounters[column] {
		return fmt.Errorf("unknown question counter %q", column)
	}
	return s.DB.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", questionID).
		Update(column, gorm.Expr(column+" + 1")).Error
}

func (s *GormStore) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Question{}).Count(&count).Error
	return count, err
}

func (s *GormStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	found, err := s.first(ctx, &c, "id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) FindCategory(ctx context.Context, nameOrSlug string) (*models.Category, error) {
	var c models.Category
	found, err := s.first(ctx, &c, "slug = ? OR LOWER(name) = ?", strings.ToLower(nameOrSlug), strings.ToLower(nameOrSlug))
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.DB.WithContext(ctx).Create(c).Error
}

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.DB.WithContext(ctx).Order("created_at ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

// --- Lurkers ---

func (s *GormStore) CreateLurker(ctx context.Context, l *models.Lurker) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "twitch_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"username": l.Username, "updated_at": time.Now()}),
		}).
		Create(l).Error
}

func (s *GormStore) DeleteLurker(ctx context.Context, twitchID string) (bool, error) {
	res := s.DB.WithContext(ctx).Where("twitch_id = ?", twitchID).Delete(&models.Lurker{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) ListLurkers(ctx context.Context) ([]models.Lurker, error) {
	var lurkers []models.Lurker
	err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&lurkers).Error
	return lurkers, err
}
