package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShadowRealm is the floor no balance can be pushed below.
const ShadowRealm int64 = -1000

// Chatter is the points account of one chat participant.
// Created on the first observed message, never deleted.
type Chatter struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	TwitchID string    `gorm:"uniqueIndex;not null" json:"twitch_id"`
	Username string    `gorm:"index;not null" json:"username"` // last write wins
	Points   int64     `gorm:"not null;default:0" json:"points"`
	Wins     int64     `gorm:"not null;default:0" json:"wins"`
	Losses   int64     `gorm:"not null;default:0" json:"losses"`
	LurkTime int64     `gorm:"not null;default:0" json:"lurk_time"` // seconds
	LastSeen time.Time `gorm:"not null" json:"last_seen"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (c *Chatter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Lurker marks a chatter who announced they are watching silently.
type Lurker struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	TwitchID  string    `gorm:"uniqueIndex;not null" json:"twitch_id"`
	Username  string    `gorm:"not null" json:"username"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (l *Lurker) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// All lists every entity for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Chatter{},
		&Lurker{},
		&Category{},
		&Question{},
		&Duel{},
		&AcceptedDuel{},
	}
}
