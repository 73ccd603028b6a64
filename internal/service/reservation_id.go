package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// maxIDAttempts bounds suffix redraws before giving up. The keyspace per
// initial pair is 10000, so exhausting this means something is very wrong.
const maxIDAttempts = 100

// reservationIDGenerator derives 6-character public reservation ids:
// two uppercase initials from the submitter's name plus a 4-digit suffix.
type reservationIDGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newReservationIDGenerator() *reservationIDGenerator {
	return &reservationIDGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newReservationIDGeneratorWithSource lets tests pin the suffix sequence.
func newReservationIDGeneratorWithSource(src rand.Source) *reservationIDGenerator {
	return &reservationIDGenerator{rng: rand.New(src)}
}

// Generate returns a reservation id not currently in use according to
// exists. Collisions redraw only the numeric suffix, up to maxIDAttempts,
// then fail with ErrIDGenerationExhausted; a duplicate is never returned.
func (g *reservationIDGenerator) Generate(ctx context.Context, name string, exists func(ctx context.Context, rid string) (bool, error)) (string, error) {
	initials := nameInitials(name)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		g.mu.Lock()
		suffix := g.rng.Intn(10000)
		g.mu.Unlock()

		rid := fmt.Sprintf("%s%04d", initials, suffix)
		taken, err := exists(ctx, rid)
		if err != nil {
			return "", fmt.Errorf("check reservation id: %w", err)
		}
		if !taken {
			return rid, nil
		}
	}
	return "", ErrIDGenerationExhausted
}

// nameInitials extracts two uppercase letters: first letters of the first
// two words, the first two letters of a lone word, or 'X' padding.
func nameInitials(name string) string {
	parts := strings.Fields(name)
	var letters []rune
	for _, part := range parts {
		if len(letters) == 2 {
			break
		}
		r := []rune(part)[0]
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
	}
	if len(letters) < 2 && len(parts) == 1 {
		runes := []rune(parts[0])
		if len(runes) >= 2 && unicode.IsLetter(runes[1]) {
			letters = append(letters, unicode.ToUpper(runes[1]))
		}
	}
	for len(letters) < 2 {
		letters = append(letters, 'X')
	}
	return string(letters[:2])
}
