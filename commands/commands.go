// Package commands turns raw chat text into typed commands.
package commands

import (
	"errors"
	"strconv"
	"strings"
)

// Command is one of the concrete command types below.
type Command interface {
	command()
}

type (
	// Duel is !duel / !challenge <user> [points].
	Duel struct {
		Target string
		Wager  *int64
	}
	// Accept is !accept [@user].
	Accept struct {
		Challenger string
	}
	// Answer is !answer <text> / !a <text>.
	Answer struct {
		Text string
	}
	Repeat struct{}
	Points struct{}
	// Gift is !gift @user <points>.
	Gift struct {
		Target string
		Amount int64
	}
	// Gamble is !gamble <points>.
	Gamble struct {
		Amount int64
	}
	Kda         struct{}
	Ranking     struct{}
	TopDuelists struct{}
	Lurk        struct{}
	Unlurk      struct{}
	Lurkers     struct{}
	LurkTime    struct{}
	Categories  struct{}
	Help        struct{}
	Yo          struct{}
	// AddPoints is the broadcaster-only !addpoints @user <points>.
	AddPoints struct {
		Target string
		Amount int64
	}
	// AddQuestion is the broadcaster-only !addquestion <category> <question> | <answer>.
	AddQuestion struct {
		Category string
		Question string
		Answer   string
	}
)

func (Duel) command()        {}
func (Accept) command()      {}
func (Answer) command()      {}
func (Repeat) command()      {}
func (Points) command()      {}
func (Gift) command()        {}
func (Gamble) command()      {}
func (Kda) command()         {}
func (Ranking) command()     {}
func (TopDuelists) command() {}
func (Lurk) command()        {}
func (Unlurk) command()      {}
func (Lurkers) command()     {}
func (LurkTime) command()    {}
func (Categories) command()  {}
func (Help) command()        {}
func (Yo) command()          {}
func (AddPoints) command()   {}
func (AddQuestion) command() {}

// Names lists the commands advertised by !commands.
var Names = []string{
	"!yo", "!lurk", "!points", "!gift", "!gamble", "!challenge", "!duel", "!accept",
	"!answer", "!repeat", "!kda", "!ranking", "!topDuelists", "!categories",
}

var (
	ErrMissingUsername = errors.New("missing username")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPoints   = errors.New("invalid point value")
	ErrNegativePoints  = errors.New("negative point value")
	ErrTooManyArgs     = errors.New("too many arguments")
	ErrMissingAnswer   = errors.New("missing answer")
	ErrQuestionFormat  = errors.New("malformed question")
)

// Chat replies for each parse error.
const (
	MsgMissingUsername = "You need to provide a username in the format @<user> or <user>"
	MsgInvalidUsername = "Provide a valid username."
	MsgInvalidPoints   = "Provide a valid point value."
	MsgNegativePoints  = "Provide a positive point value."
	MsgTooManyArgs     = "Too many arguments!"
	MsgMissingAnswer   = "Type '!answer <your_answer>' to answer!"
	MsgQuestionFormat  = "Format: '!addquestion <category> <question> | <answer>'"
)

var replies = map[error]string{
	ErrMissingUsername: MsgMissingUsername,
	ErrInvalidUsername: MsgInvalidUsername,
	ErrInvalidPoints:   MsgInvalidPoints,
	ErrNegativePoints:  MsgNegativePoints,
	ErrTooManyArgs:     MsgTooManyArgs,
	ErrMissingAnswer:   MsgMissingAnswer,
	ErrQuestionFormat:  MsgQuestionFormat,
}

// ParseError is a recognised command with malformed arguments.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Reply is the text shown to the chatter who sent the malformed command.
func (e *ParseError) Reply() string {
	if msg, ok := replies[e.Err]; ok {
		return msg
	}
	return e.Err.Error()
}

// Parse classifies a chat line. ok is false when the text is not a command;
// err is a *ParseError when the command is known but its arguments are not.
func Parse(text string) (cmd Command, ok bool, err error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return nil, false, nil
	}
	name, args := fields[0], fields[1:]

	cmd, err = parse(name, args, text)
	if err != nil {
		return nil, true, &ParseError{Name: name, Err: err}
	}
	if cmd == nil {
		return nil, false, nil
	}
	return cmd, true, nil
}

func parse(name string, args []string, text string) (Command, error) {
	switch name {
	case "!duel", "!challenge":
		return parseDuel(args)
	case "!accept":
		return parseAccept(args)
	case "!answer", "!a":
		answer := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), name))
		if answer == "" {
			return nil, ErrMissingAnswer
		}
		return Answer{Text: answer}, nil
	case "!repeat":
		return Repeat{}, nil
	case "!points":
		return Points{}, nil
	case "!gift":
		target, amount, err := parseTargetAmount(args)
		if err != nil {
			return nil, err
		}
		return Gift{Target: target, Amount: amount}, nil
	case "!gamble":
		if len(args) != 1 {
			if len(args) > 1 {
				return nil, ErrTooManyArgs
			}
			return nil, ErrInvalidPoints
		}
		amount, err := ParsePoints(args[0])
		if err != nil {
			return nil, err
		}
		return Gamble{Amount: amount}, nil
	case "!kda":
		return Kda{}, nil
	case "!ranking":
		return Ranking{}, nil
	case "!topDuelists":
		return TopDuelists{}, nil
	case "!lurk":
		return Lurk{}, nil
	case "!unlurk":
		return Unlurk{}, nil
	case "!lurkers":
		return Lurkers{}, nil
	case "!lurktime":
		return LurkTime{}, nil
	case "!categories":
		return Categories{}, nil
	case "!commands":
		return Help{}, nil
	case "!yo":
		return Yo{}, nil
	case "!addpoints":
		target, amount, err := parseTargetAmount(args)
		if err != nil {
			return nil, err
		}
		return AddPoints{Target: target, Amount: amount}, nil
	case "!addquestion":
		return parseAddQuestion(args)
	}
	return nil, nil
}

func parseDuel(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, ErrMissingUsername
	}
	if len(args) > 2 {
		return nil, ErrTooManyArgs
	}
	target, err := ParseUsername(args[0])
	if err != nil {
		return nil, err
	}
	d := Duel{Target: target}
	if len(args) == 2 {
		wager, err := ParsePoints(args[1])
		if err != nil {
			return nil, err
		}
		d.Wager = &wager
	}
	return d, nil
}

func parseAccept(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return Accept{}, nil
	case 1:
		challenger, err := ParseUsername(args[0])
		if err != nil {
			return nil, err
		}
		return Accept{Challenger: challenger}, nil
	}
	return nil, ErrTooManyArgs
}

func parseTargetAmount(args []string) (string, int64, error) {
	if len(args) == 0 {
		return "", 0, ErrMissingUsername
	}
	if len(args) == 1 {
		return "", 0, ErrInvalidPoints
	}
	if len(args) > 2 {
		return "", 0, ErrTooManyArgs
	}
	target, err := ParseUsername(args[0])
	if err != nil {
		return "", 0, err
	}
	amount, err := ParsePoints(args[1])
	if err != nil {
		return "", 0, err
	}
	return target, amount, nil
}

func parseAddQuestion(args []string) (Command, error) {
	if len(args) < 2 {
		return nil, ErrQuestionFormat
	}
	q, a, found := strings.Cut(strings.Join(args[1:], " "), "|")
	q, a = strings.TrimSpace(q), strings.TrimSpace(a)
	if !found || q == "" || a == "" {
		return nil, ErrQuestionFormat
	}
	return AddQuestion{Category: args[0], Question: q, Answer: a}, nil
}

// ParseUsername strips a leading '@' and checks the handle charset.
func ParseUsername(raw string) (string, error) {
	name := strings.TrimPrefix(raw, "@")
	if name == "" {
		return "", ErrInvalidUsername
	}
	for _, ch := range name {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !isAlnum && ch != '_' {
			return "", ErrInvalidUsername
		}
	}
	return name, nil
}

// ParsePoints parses a non-negative point amount.
func ParsePoints(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidPoints
	}
	if n < 0 {
		return 0, ErrNegativePoints
	}
	return n, nil
}
