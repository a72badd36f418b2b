package services

import (
	"context"
	"fmt"

	"duel-bot/logger"
)

const (
	categoryProgLang   = "Guess the Programming Language"
	categoryMovieQuote = "Guess the Movie by the Quote"
	categoryScramble   = "Word Scramble"
	categoryGeneral    = "General"
)

var starterCategories = []string{categoryProgLang, categoryMovieQuote, categoryScramble, categoryGeneral}

var starterQuestions = []PackEntry{
	{categoryProgLang, "cant do a for loop", "python"},
	{categoryProgLang, "named after a certain snake", "python"},
	{categoryProgLang, "is commonly seen in machine learning", "python"},
	{categoryProgLang, "will be killed by Mojo", "python"},
	{categoryProgLang, "tokiiiiiiiiiiooooooo!", "rust"},
	{categoryProgLang, "unsafe { /* trust me */ }", "rust"},
	{categoryProgLang, "named as popular survival game", "rust"},
	{categoryProgLang, "is considered to be blazingly fast", "rust"},
	{categoryProgLang, "fearless Arc<Mutex<HashMap<K, V>>>", "rust"},
	{categoryProgLang, "cannot borrow as mutable because it is also borrowed as immutable", "rust"},
	{categoryProgLang, "segfault", "c"},
	{categoryProgLang, "king of undefined behavior", "c"},
	{categoryProgLang, "main language of the linux kernel", "c"},
	{categoryProgLang, "was supposed to improve C", "c++"},
	{categoryProgLang, "one of the most hated languages", "c++"},
	{categoryProgLang, "a desert themed functional language", "ocaml"},
	{categoryProgLang, "has `comptime` keyword", "zig"},
	{categoryProgLang, "has a lizard mascot for the language", "zig"},
	{categoryProgLang, "if err != nil", "go"},
	{categoryProgLang, "can go func yourself on accident", "go"},
	{categoryProgLang, "uses capital letters to denote public visibility", "go"},
	{categoryProgLang, "used by 35 people", "haskell"},
	{categoryProgLang, "is like a burrito", "haskell"},
	{categoryProgLang, "monad is a monoid in the category of endofunctors", "haskell"},
	{categoryProgLang, "this language is full of parenthesis", "racket"},
	{categoryProgLang, "can `explode`", "php"},
	{categoryProgLang, "language created by Jonathan Blow, which will come out in the next 25 years", "jai"},

	{categoryMovieQuote, "May the Force be with you", "star wars"},
	{categoryMovieQuote, "I'm the king of the world!", "titanic"},
	{categoryMovieQuote, "It's alive! It's alive!", "frankenstein"},
	{categoryMovieQuote, "I'll be back", "terminator"},
	{categoryMovieQuote, "You're gonna need a bigger boat.", "jaws"},
	{categoryMovieQuote, "My precious", "lord of the rings"},
	{categoryMovieQuote, "Hey, you. Dumbass.", "the walking dead"},

	{categoryScramble, "ulot", "tolu"},
	{categoryScramble, "lopo", "pool"},
	{categoryScramble, "chooectal", "chocolate"},
	{categoryScramble, "ubritro", "burrito"},
	{categoryScramble, "algansa", "lasagna"},
}

// SeedQuestionBank inserts the starter categories and questions when the bank is empty.
func SeedQuestionBank(ctx context.Context, bank *QuestionBank, submitterID string) error {
	categories, err := bank.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		for _, name := range starterCategories {
			if _, err := bank.EnsureCategory(ctx, name, submitterID); err != nil {
				return err
			}
		}
		logger.Info("🌱 seeded categories", "count", len(starterCategories))
	}

	count, err := bank.Store.CountQuestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return nil
	}
	n, err := bank.Import(ctx, starterQuestions, submitterID)
	if err != nil {
		return err
	}
	logger.Info("🌱 seeded questions", "count", n)
	return nil
}
