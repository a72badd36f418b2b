package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePack = `[
  {"category": "Word Scramble", "question": "lopo", "answer": "pool"},
  {"category": "Guess the Movie by the Quote", "question": "I'll be back", "answer": "terminator"}
]`

func TestDecodeQuestionPack(t *testing.T) {
	pack, err := DecodeQuestionPack(strings.NewReader(samplePack))
	require.NoError(t, err)
	require.Len(t, pack, 2)
	assert.Equal(t, "pool", pack[0].Answer)
	assert.Equal(t, "Guess the Movie by the Quote", pack[1].Category)

	_, err = DecodeQuestionPack(strings.NewReader(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestLoadQuestionPackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePack), 0o600))

	pack, err := LoadQuestionPackFile(path)
	require.NoError(t, err)
	assert.Len(t, pack, 2)

	_, err = LoadQuestionPackFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
