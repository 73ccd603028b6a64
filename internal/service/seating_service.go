package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
)

// SeatingEntry is one other reservation as shown on the seating board.
// DisplayName prefers entered guest names over the raw RSVP name.
type SeatingEntry struct {
	RSVPID      uuid.UUID `json:"rsvp_id"`
	DisplayName string    `json:"display_name"`
	Rank        int       `json:"rank,omitempty"` // 1-based, zero when unranked
}

// SeatingBoard splits the other reservations into the caller's ranked
// ordering and the remainder.
type SeatingBoard struct {
	Ranked   []SeatingEntry `json:"ranked"`
	Unranked []SeatingEntry `json:"unranked"`
}

type SeatingService interface {
	Board(ctx context.Context, rsvpID uuid.UUID) (*SeatingBoard, error)
	Rank(ctx context.Context, rsvpID uuid.UUID, orderedIDs []uuid.UUID) error
}

type seatingService struct {
	rsvpRepo    repository.RSVPRepository
	seatingRepo repository.SeatingRepository
}

func NewSeatingService(rsvpRepo repository.RSVPRepository, seatingRepo repository.SeatingRepository) SeatingService {
	return &seatingService{rsvpRepo: rsvpRepo, seatingRepo: seatingRepo}
}

func (s *seatingService) Board(ctx context.Context, rsvpID uuid.UUID) (*SeatingBoard, error) {
	others, err := s.othersByID(ctx, rsvpID)
	if err != nil {
		return nil, err
	}
	if len(others) == 0 {
		return nil, ErrNothingToRank
	}

	board := &SeatingBoard{}
	inRanked := make(map[uuid.UUID]bool)
	for _, id := range s.rankedIDs(ctx, rsvpID) {
		other, ok := others[id]
		if !ok {
			// Stale entry: that reservation was deleted since ranking.
			continue
		}
		inRanked[id] = true
		board.Ranked = append(board.Ranked, SeatingEntry{
			RSVPID:      id,
			DisplayName: s.displayName(ctx, other),
			Rank:        len(board.Ranked) + 1,
		})
	}

	unranked := make([]SeatingEntry, 0, len(others)-len(inRanked))
	for id, other := range others {
		if !inRanked[id] {
			unranked = append(unranked, SeatingEntry{RSVPID: id, DisplayName: s.displayName(ctx, other)})
		}
	}
	sort.Slice(unranked, func(i, j int) bool {
		return unranked[i].DisplayName < unranked[j].DisplayName
	})
	board.Unranked = unranked
	return board, nil
}

func (s *seatingService) Rank(ctx context.Context, rsvpID uuid.UUID, orderedIDs []uuid.UUID) error {
	others, err := s.othersByID(ctx, rsvpID)
	if err != nil {
		return err
	}

	// Keep only real, distinct, other reservations; order is the ranking.
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	valid := make([]uuid.UUID, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := others[id]; ok && !seen[id] {
			seen[id] = true
			valid = append(valid, id)
		}
	}

	pref := &model.SeatingPreference{RSVPID: rsvpID}
	if err := pref.SetRankedList(valid); err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}
	return s.seatingRepo.Upsert(ctx, pref)
}

func (s *seatingService) othersByID(ctx context.Context, rsvpID uuid.UUID) (map[uuid.UUID]model.RSVP, error) {
	all, err := s.rsvpRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	others := make(map[uuid.UUID]model.RSVP, len(all))
	for _, r := range all {
		if r.ID != rsvpID {
			others[r.ID] = r
		}
	}
	return others, nil
}

func (s *seatingService) rankedIDs(ctx context.Context, rsvpID uuid.UUID) []uuid.UUID {
	pref, err := s.seatingRepo.GetByRSVP(ctx, rsvpID)
	if err != nil {
		// No stored ranking yet, or it could not be read; either way the
		// board just shows everyone unranked.
		return nil
	}
	return pref.RankedList()
}

func (s *seatingService) displayName(ctx context.Context, rsvp model.RSVP) string {
	guests := rsvp.Guests
	if len(guests) == 0 {
		// ListAll preloads guests, but tolerate a bare record.
		loaded, err := s.rsvpRepo.ListGuests(ctx, rsvp.ID)
		if err == nil {
			guests = loaded
		}
	}
	if len(guests) == 0 {
		return rsvp.Name
	}
	names := make([]string, len(guests))
	for i, g := range guests {
		names[i] = g.FirstName + " " + g.LastName
	}
	return strings.Join(names, " and ")
}
