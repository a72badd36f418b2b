package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DuelStatus only moves forward: challenged → accepted → completed.
type DuelStatus string

const (
	DuelStatusChallenged DuelStatus = "challenged"
	DuelStatusAccepted   DuelStatus = "accepted"
	DuelStatusCompleted  DuelStatus = "completed"
)

// Next returns the only status a duel may move to from s.
func (s DuelStatus) Next() (DuelStatus, bool) {
	switch s {
	case DuelStatusChallenged:
		return DuelStatusAccepted, true
	case DuelStatusAccepted:
		return DuelStatusCompleted, true
	}
	return "", false
}

// Duel is one trivia challenge between two chatters.
// Points (the wager) is fixed at creation; Question/Answer are set once on acceptance.
type Duel struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Challenger   string     `gorm:"not null" json:"challenger"`
	Challenged   string     `gorm:"not null" json:"challenged"`
	ChallengerID string     `gorm:"index;not null" json:"challenger_id"`
	ChallengedID string     `gorm:"index;not null" json:"challenged_id"`
	Points       int64      `gorm:"not null;check:points >= 0" json:"points"`
	Status       DuelStatus `gorm:"type:varchar(16);not null;default:'challenged';index" json:"status"`

	QuestionID *string `gorm:"type:uuid" json:"question_id,omitempty"`
	Question   *string `json:"question,omitempty"`
	Answer     *string `json:"-"`
	Category   *string `json:"category,omitempty"`

	ChallengerGuesses int `gorm:"not null" json:"challenger_guesses"`
	ChallengedGuesses int `gorm:"not null" json:"challenged_guesses"`

	Winner   *string `json:"winner,omitempty"`
	WinnerID *string `json:"winner_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (d *Duel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *Duel) IsParticipant(twitchID string) bool {
	return d.ChallengerID == twitchID || d.ChallengedID == twitchID
}

func (d *Duel) IsChallenger(twitchID string) bool {
	return d.ChallengerID == twitchID
}

// GuessesLeft returns the remaining guess budget of a participant.
func (d *Duel) GuessesLeft(twitchID string) int {
	if d.IsChallenger(twitchID) {
		return d.ChallengerGuesses
	}
	return d.ChallengedGuesses
}

// Opponent returns the display name and id of the other participant.
func (d *Duel) Opponent(twitchID string) (string, string) {
	if d.IsChallenger(twitchID) {
		return d.Challenged, d.ChallengedID
	}
	return d.Challenger, d.ChallengerID
}

// Name returns the display name of a participant.
func (d *Duel) Name(twitchID string) string {
	if d.IsChallenger(twitchID) {
		return d.Challenger
	}
	return d.Challenged
}

func (d *Duel) Exhausted() bool {
	return d.ChallengerGuesses <= 0 && d.ChallengedGuesses <= 0
}

// AcceptedDuel indexes a duel while it is in accepted status.
// Removed the moment the duel completes.
type AcceptedDuel struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	DuelID       string    `gorm:"type:uuid;uniqueIndex;not null" json:"duel_id"`
	ChallengerID string    `gorm:"index;not null" json:"challenger_id"`
	ChallengedID string    `gorm:"index;not null" json:"challenged_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (a *AcceptedDuel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
