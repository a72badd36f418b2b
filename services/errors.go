package services

import "errors"

// ErrorKind separates rejections a chatter caused from failures they did not.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
)

// UserError is a rejection that is replied to the invoking chatter verbatim.
type UserError struct {
	Kind    ErrorKind
	Message string
}

func (e *UserError) Error() string { return e.Message }

func validation(msg string) error {
	return &UserError{Kind: KindValidation, Message: msg}
}

func notFound(msg string) error {
	return &UserError{Kind: KindNotFound, Message: msg}
}

// AsUserError unwraps a *UserError from err.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsNotFound reports whether err is a user-facing not-found rejection.
func IsNotFound(err error) bool {
	ue, ok := AsUserError(err)
	return ok && ue.Kind == KindNotFound
}

// Chat-facing rejection messages.
const (
	MsgSelfDuel         = "You can't duel yourself silly!"
	MsgChatterNotFound  = "Chatter not found!"
	MsgAlreadyAccepted  = "You already have an accepted duel!"
	MsgOpponentBusy     = "Your opponent already has an accepted duel!"
	MsgNotEnoughPoints  = "You don't have enough points to wager that much!!"
	MsgWrongOpponent    = "Wrong opponent!"
	MsgNoDuel           = "No duel found!"
	MsgAmbiguousAccept  = "You have more than one challenge! Provide a username in the format !accept @<user> or !accept <user>"
	MsgNoQuestions      = "There are no questions yet, duels can't start!"
	MsgNotEnoughToGift  = "You don't have enough points to gift that much!"
	MsgNotEnoughGamble  = "You don't have enough points to gamble that much!"
	MsgSelfGift         = "You can't gift yourself points!"
	MsgBroadcasterOnly  = "Only the broadcaster can do that!"
	MsgCategoryNotFound = "Category not found!"
)

var (
	ErrNoQuestions   = errors.New("question bank is empty")
	ErrEmptyQuestion = errors.New("question and answer must not be empty")
)
