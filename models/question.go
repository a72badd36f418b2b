package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Category struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	SubmitterID string    `gorm:"not null" json:"submitter_id"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// Question is immutable once created except for its usage counters.
type Question struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Question         string    `gorm:"type:text;not null" json:"question"`
	Answer           string    `gorm:"type:text;not null" json:"answer"`
	CategoryID       string    `gorm:"type:uuid;index;not null" json:"category_id"`
	SubmitterID      string    `gorm:"not null" json:"submitter_id"`
	TimesAsked       int64     `gorm:"not null;default:0" json:"times_asked"`
	TimesNotAnswered int64     `gorm:"not null;default:0" json:"times_not_answered"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
