package repository

import (
	"testing"

	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeReactions(t *testing.T) {
	reactions := []domain.Reaction{
		{MessageID: 1, ReactorID: 10, Glyph: "👍"},
		{MessageID: 1, ReactorID: 11, Glyph: "❤️"},
		{MessageID: 1, ReactorID: 12, Glyph: "👍"},
		{MessageID: 1, ReactorID: 13, Glyph: "🔥"},
		{MessageID: 1, ReactorID: 14, Glyph: "❤️"},
	}

	items := SummarizeReactions(reactions)

	assert.Len(t, items, 3)
	// count descending, then glyph ascending on ties
	assert.Equal(t, "❤️", items[0].Glyph)
	assert.Equal(t, 2, items[0].Count)
	assert.Equal(t, "👍", items[1].Glyph)
	assert.Equal(t, 2, items[1].Count)
	assert.Equal(t, "🔥", items[2].Glyph)
	assert.Equal(t, 1, items[2].Count)

	// reactor ids preserve reaction order
	assert.Equal(t, []uint64{11, 14}, items[0].ReactorIDs)
	assert.Equal(t, []uint64{10, 12}, items[1].ReactorIDs)
}

func TestSummarizeReactionsEmpty(t *testing.T) {
	assert.Empty(t, SummarizeReactions(nil))
}

func TestSummarizeReactionsTieOrder(t *testing.T) {
	reactions := []domain.Reaction{
		{ReactorID: 2, Glyph: "b"},
		{ReactorID: 1, Glyph: "a"},
	}
	items := SummarizeReactions(reactions)
	assert.Equal(t, "a", items[0].Glyph)
	assert.Equal(t, "b", items[1].Glyph)
}
