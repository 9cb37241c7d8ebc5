package wordlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbari-org/dettrackd/internal/wordlist"
)

func TestDrawReturnsKnownWords(t *testing.T) {
	adjSet := make(map[string]bool, len(wordlist.Adjectives))
	for _, a := range wordlist.Adjectives {
		adjSet[a] = true
	}
	stateSet := make(map[string]bool, len(wordlist.States))
	for _, s := range wordlist.States {
		stateSet[s] = true
	}

	for i := 0; i < 50; i++ {
		adj, state := wordlist.Draw()
		assert.True(t, adjSet[adj], "unexpected adjective %q", adj)
		assert.True(t, stateSet[state], "unexpected state %q", state)
	}
}

func TestListsAreNonEmptyAndDeduped(t *testing.T) {
	assertUnique(t, wordlist.Adjectives)
	assertUnique(t, wordlist.States)
}

func assertUnique(t *testing.T, words []string) {
	t.Helper()
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
	assert.NotEmpty(t, words)
}
