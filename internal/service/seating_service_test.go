package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
)

func newSeatingFixture(t *testing.T) (SeatingService, RSVPService) {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "seating_test.db")),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	rsvpRepo := repository.NewGormRSVPRepository(db)
	rsvps := NewRSVPService(rsvpRepo, zap.NewNop())
	return NewSeatingService(rsvpRepo, repository.NewGormSeatingRepository(db)), rsvps
}

func TestSeatingBoard_NothingToRank(t *testing.T) {
	seating, rsvps := newSeatingFixture(t)
	ctx := context.Background()

	only, err := rsvps.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	_, err = seating.Board(ctx, only.ID)
	assert.ErrorIs(t, err, ErrNothingToRank)
}

func TestSeatingRankAndBoard(t *testing.T) {
	seating, rsvps := newSeatingFixture(t)
	ctx := context.Background()

	me, err := rsvps.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	alpha, err := rsvps.Create(ctx, "Alpha Family", "alpha@westpoint.edu", 1)
	require.NoError(t, err)
	bravo, err := rsvps.Create(ctx, "Bravo Family", "bravo@westpoint.edu", 1)
	require.NoError(t, err)

	// Ranking filters the caller's own id, unknowns, and duplicates.
	err = seating.Rank(ctx, me.ID, []uuid.UUID{bravo.ID, me.ID, uuid.New(), bravo.ID, alpha.ID})
	require.NoError(t, err)

	board, err := seating.Board(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, board.Ranked, 2)
	assert.Equal(t, bravo.ID, board.Ranked[0].RSVPID)
	assert.Equal(t, 1, board.Ranked[0].Rank)
	assert.Equal(t, alpha.ID, board.Ranked[1].RSVPID)
	assert.Equal(t, 2, board.Ranked[1].Rank)
	assert.Empty(t, board.Unranked)
}

func TestSeatingBoard_DisplayNamePrefersGuestNames(t *testing.T) {
	seating, rsvps := newSeatingFixture(t)
	ctx := context.Background()

	me, err := rsvps.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	other, err := rsvps.Create(ctx, "The Smith Household", "jsmith@westpoint.edu", 2)
	require.NoError(t, err)

	board, err := seating.Board(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, board.Unranked, 1)
	assert.Equal(t, "The Smith Household", board.Unranked[0].DisplayName)

	_, err = rsvps.SaveGuestInfo(ctx, other.ID, []GuestInput{
		{GuestNumber: 1, FirstName: "John", LastName: "Smith"},
		{GuestNumber: 2, FirstName: "Joan", LastName: "Smith"},
	})
	require.NoError(t, err)

	board, err = seating.Board(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, board.Unranked, 1)
	assert.Equal(t, "John Smith and Joan Smith", board.Unranked[0].DisplayName)
}

func TestSeatingBoard_SkipsDeletedRankedEntries(t *testing.T) {
	seating, rsvps := newSeatingFixture(t)
	ctx := context.Background()

	me, err := rsvps.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	alpha, err := rsvps.Create(ctx, "Alpha Family", "alpha@westpoint.edu", 1)
	require.NoError(t, err)
	bravo, err := rsvps.Create(ctx, "Bravo Family", "bravo@westpoint.edu", 1)
	require.NoError(t, err)

	require.NoError(t, seating.Rank(ctx, me.ID, []uuid.UUID{alpha.ID, bravo.ID}))
	require.NoError(t, rsvps.Delete(ctx, alpha.ID))

	board, err := seating.Board(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, board.Ranked, 1)
	assert.Equal(t, bravo.ID, board.Ranked[0].RSVPID)
	assert.Equal(t, 1, board.Ranked[0].Rank)
}
