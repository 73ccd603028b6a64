package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PendingReservation holds a submitted RSVP form that collided with an
// existing email and is waiting for the visitor to confirm the update.
type PendingReservation struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	NumGuests int    `json:"num_guests"`
}

// WorkflowState scopes the multi-step form state to one visitor session.
// Every field lives until consumed: readers that finish a step clear the
// key so browser back-navigation cannot replay it.
type WorkflowState struct {
	store StateStore
	ttl   time.Duration
}

func NewWorkflowState(store StateStore, ttl time.Duration) *WorkflowState {
	return &WorkflowState{store: store, ttl: ttl}
}

const (
	keyPendingReservation = "pending_rsvp:"
	keyRemovalTarget      = "removal_target:"
	keyGuestInfoRSVP      = "guest_info_rsvp:"
	keyDisplayRID         = "display_rid:"
)

func (w *WorkflowState) PutPending(ctx context.Context, sessionID string, p PendingReservation) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return w.store.Set(ctx, keyPendingReservation+sessionID, raw, w.ttl)
}

func (w *WorkflowState) GetPending(ctx context.Context, sessionID string) (*PendingReservation, error) {
	raw, err := w.store.Get(ctx, keyPendingReservation+sessionID)
	if err != nil || raw == nil {
		return nil, err
	}
	var p PendingReservation
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (w *WorkflowState) ClearPending(ctx context.Context, sessionID string) error {
	return w.store.Delete(ctx, keyPendingReservation+sessionID)
}

func (w *WorkflowState) PutRemovalTarget(ctx context.Context, sessionID string, rsvpID uuid.UUID) error {
	return w.store.Set(ctx, keyRemovalTarget+sessionID, []byte(rsvpID.String()), w.ttl)
}

func (w *WorkflowState) GetRemovalTarget(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	return w.getID(ctx, keyRemovalTarget+sessionID)
}

func (w *WorkflowState) ClearRemovalTarget(ctx context.Context, sessionID string) error {
	return w.store.Delete(ctx, keyRemovalTarget+sessionID)
}

func (w *WorkflowState) PutGuestInfoRSVP(ctx context.Context, sessionID string, rsvpID uuid.UUID) error {
	return w.store.Set(ctx, keyGuestInfoRSVP+sessionID, []byte(rsvpID.String()), w.ttl)
}

func (w *WorkflowState) GetGuestInfoRSVP(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	return w.getID(ctx, keyGuestInfoRSVP+sessionID)
}

func (w *WorkflowState) ClearGuestInfoRSVP(ctx context.Context, sessionID string) error {
	return w.store.Delete(ctx, keyGuestInfoRSVP+sessionID)
}

func (w *WorkflowState) PutDisplayReservationID(ctx context.Context, sessionID, rid string) error {
	return w.store.Set(ctx, keyDisplayRID+sessionID, []byte(rid), w.ttl)
}

// TakeDisplayReservationID returns the reservation id queued for the success
// page and removes it, so a second render shows nothing.
func (w *WorkflowState) TakeDisplayReservationID(ctx context.Context, sessionID string) (string, error) {
	key := keyDisplayRID + sessionID
	raw, err := w.store.Get(ctx, key)
	if err != nil || raw == nil {
		return "", err
	}
	if err := w.store.Delete(ctx, key); err != nil {
		return "", err
	}
	return string(raw), nil
}

func (w *WorkflowState) getID(ctx context.Context, key string) (uuid.UUID, bool, error) {
	raw, err := w.store.Get(ctx, key)
	if err != nil || raw == nil {
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}
