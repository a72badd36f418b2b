package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"duel-bot/services"
)

// DecodeQuestionPack reads a JSON array of {category, question, answer} objects.
func DecodeQuestionPack(r io.Reader) ([]services.PackEntry, error) {
	var pack []services.PackEntry
	if err := json.NewDecoder(r).Decode(&pack); err != nil {
		return nil, fmt.Errorf("failed to decode question pack: %w", err)
	}
	return pack, nil
}

// LoadQuestionPackFile reads a question pack from disk.
func LoadQuestionPackFile(path string) ([]services.PackEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeQuestionPack(file)
}
