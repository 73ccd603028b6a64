package service

import (
	"context"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ridPattern = regexp.MustCompile(`^[A-Z]{2}\d{4}$`)

func neverExists(context.Context, string) (bool, error) { return false, nil }

func TestNameInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two words", "Jane Doe", "JD"},
		{"three words keeps first two", "Jane Q Doe", "JQ"},
		{"single word uses first two letters", "Jane", "JA"},
		{"single letter pads", "J", "JX"},
		{"empty pads fully", "", "XX"},
		{"whitespace only", "   ", "XX"},
		{"lowercase is uppercased", "jane doe", "JD"},
		{"extra spaces ignored", "  Jane   Doe  ", "JD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nameInitials(tt.in))
		})
	}
}

func TestGenerate_Pattern(t *testing.T) {
	g := newReservationIDGenerator()

	rid, err := g.Generate(context.Background(), "Jane Doe", neverExists)
	require.NoError(t, err)
	assert.Regexp(t, ridPattern, rid)
	assert.Equal(t, "JD", rid[:2])
}

func TestGenerate_RedrawsOnCollision(t *testing.T) {
	g := newReservationIDGeneratorWithSource(rand.NewSource(1))

	// First draw is taken; the generator must redraw rather than return it.
	var first string
	exists := func(_ context.Context, rid string) (bool, error) {
		if first == "" {
			first = rid
			return true, nil
		}
		return false, nil
	}

	rid, err := g.Generate(context.Background(), "Jane Doe", exists)
	require.NoError(t, err)
	assert.NotEqual(t, first, rid)
	assert.Regexp(t, ridPattern, rid)
}

func TestGenerate_Exhausted(t *testing.T) {
	g := newReservationIDGeneratorWithSource(rand.NewSource(1))

	calls := 0
	allTaken := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := g.Generate(context.Background(), "Jane Doe", allTaken)
	require.ErrorIs(t, err, ErrIDGenerationExhausted)
	assert.Equal(t, maxIDAttempts, calls)
}

func TestSuggestGuestName(t *testing.T) {
	first, last := SuggestGuestName("Jane Doe")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Doe", last)

	first, last = SuggestGuestName("Jane Q Public")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Public", last)

	first, last = SuggestGuestName("Jane")
	assert.Equal(t, "Jane", first)
	assert.Empty(t, last)

	first, last = SuggestGuestName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
