package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/response"
)

// RSVPHandler drives the multi-step reservation workflow: form entry,
// update confirmation, guest removal, and the success page.
type RSVPHandler struct {
	svc      service.RSVPService
	state    *repository.WorkflowState
	sessions *Sessions
	logger   *zap.Logger
}

func NewRSVPHandler(svc service.RSVPService, state *repository.WorkflowState, sessions *Sessions, logger *zap.Logger) *RSVPHandler {
	return &RSVPHandler{svc: svc, state: state, sessions: sessions, logger: logger}
}

// resolveReturning re-validates the returning-user cookie against the
// store. A token for a deleted reservation is cleared, not trusted.
func (h *RSVPHandler) resolveReturning(c *gin.Context) *model.RSVP {
	id, ok := h.sessions.ReturningRSVPID(c)
	if !ok {
		return nil
	}
	rsvp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.sessions.ClearReturning(c)
		}
		return nil
	}
	return rsvp
}

// Home identifies a returning visitor, if any.
func (h *RSVPHandler) Home(c *gin.Context) {
	if rsvp := h.resolveReturning(c); rsvp != nil {
		response.Success(c, gin.H{"rsvp": summarize(rsvp)})
		return
	}
	response.Success(c, gin.H{"rsvp": nil})
}

type rsvpFormRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	NumGuests int    `json:"num_guests" binding:"required"`
}

// Form returns the state the RSVP page should render: a welcome-back
// choice for recognized visitors, or the blank/prefilled form.
func (h *RSVPHandler) Form(c *gin.Context) {
	action := c.Query("action")
	returning := h.resolveReturning(c)

	if action == "delete" {
		h.deleteReservation(c, returning)
		return
	}

	if returning != nil && action == "" {
		response.Success(c, gin.H{
			"state": "welcome_back",
			"rsvp":  summarize(returning),
		})
		return
	}

	var prefill *rsvpFormRequest
	if action == "modify" && returning != nil {
		prefill = &rsvpFormRequest{
			Name:      returning.Name,
			Email:     returning.Email,
			NumGuests: returning.NumGuests,
		}
	}
	response.Success(c, gin.H{"state": "form", "prefill": prefill})
}

// Submit handles an RSVP form post. Depending on the action and on whether
// the email collides with another reservation, it creates, updates, or
// parks the submission for confirmation.
func (h *RSVPHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	action := c.Query("action")
	returning := h.resolveReturning(c)

	if action == "delete" {
		h.deleteReservation(c, returning)
		return
	}

	// A recognized visitor must choose modify or new before submitting.
	if returning != nil && action == "" {
		response.Success(c, gin.H{
			"state": "welcome_back",
			"rsvp":  summarize(returning),
		})
		return
	}

	var req rsvpFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var current *model.RSVP
	if action == "modify" {
		current = returning
	}

	outcome, err := h.svc.DecideSubmit(ctx, current, req.Name, req.Email, req.NumGuests)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	sid := h.sessions.SessionID(c)

	if outcome.Pending != nil {
		if err := h.state.PutPending(ctx, sid, *outcome.Pending); err != nil {
			response.InternalError(c, "could not stash pending reservation")
			return
		}
		response.Success(c, gin.H{"next": "confirm-update"})
		return
	}

	rsvp := outcome.RSVP
	if err := h.sessions.SetReturning(c, rsvp.ID); err != nil {
		response.InternalError(c, "could not set reservation cookie")
		return
	}
	if err := h.state.PutDisplayReservationID(ctx, sid, rsvp.ReservationID); err != nil {
		response.InternalError(c, "could not record reservation id")
		return
	}

	if outcome.GuestCountReduced {
		if err := h.state.PutRemovalTarget(ctx, sid, rsvp.ID); err != nil {
			response.InternalError(c, "could not record removal target")
			return
		}
		response.Success(c, gin.H{"next": "remove-guest"})
		return
	}
	response.Success(c, gin.H{
		"next":           "success",
		"created":        outcome.Created,
		"reservation_id": rsvp.ReservationID,
	})
}

func (h *RSVPHandler) deleteReservation(c *gin.Context, returning *model.RSVP) {
	if returning == nil {
		response.NotFound(c, "no reservation to delete")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), returning.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	h.sessions.ClearReturning(c)
	response.SuccessMessage(c, "reservation deleted")
}

// ConfirmUpdateView shows the pending submission next to the reservation
// it would overwrite.
func (h *RSVPHandler) ConfirmUpdateView(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	pending, err := h.state.GetPending(ctx, sid)
	if err != nil {
		response.InternalError(c, "could not load pending reservation")
		return
	}
	if pending == nil {
		response.Success(c, gin.H{"next": "rsvp"})
		return
	}

	existing, err := h.svc.Lookup(ctx, pending.Email)
	if err != nil {
		// The record vanished while the visitor deliberated.
		_ = h.state.ClearPending(ctx, sid)
		response.Success(c, gin.H{"next": "rsvp"})
		return
	}

	response.Success(c, gin.H{
		"pending":  pending,
		"existing": summarize(existing),
	})
}

type confirmUpdateRequest struct {
	Confirm *bool `json:"confirm" binding:"required"`
}

// ConfirmUpdateSubmit applies or discards the pending submission.
func (h *RSVPHandler) ConfirmUpdateSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	var req confirmUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	pending, err := h.state.GetPending(ctx, sid)
	if err != nil {
		response.InternalError(c, "could not load pending reservation")
		return
	}
	if pending == nil {
		response.Success(c, gin.H{"next": "rsvp"})
		return
	}
	// Consumed either way; back-navigation must not replay it.
	if err := h.state.ClearPending(ctx, sid); err != nil {
		response.InternalError(c, "could not clear pending reservation")
		return
	}

	if !*req.Confirm {
		response.Success(c, gin.H{"next": "rsvp"})
		return
	}

	existing, err := h.svc.Lookup(ctx, pending.Email)
	if err != nil {
		response.Success(c, gin.H{"next": "rsvp"})
		return
	}

	updated, reduced, err := h.svc.Update(ctx, existing.ID, pending.Name, pending.Email, pending.NumGuests)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if err := h.sessions.SetReturning(c, updated.ID); err != nil {
		response.InternalError(c, "could not set reservation cookie")
		return
	}
	if err := h.state.PutDisplayReservationID(ctx, sid, updated.ReservationID); err != nil {
		response.InternalError(c, "could not record reservation id")
		return
	}

	if reduced {
		if err := h.state.PutRemovalTarget(ctx, sid, updated.ID); err != nil {
			response.InternalError(c, "could not record removal target")
			return
		}
		response.Success(c, gin.H{"next": "remove-guest"})
		return
	}
	response.Success(c, gin.H{"next": "success", "reservation_id": updated.ReservationID})
}

// RemoveGuestView lists the guests the visitor can drop after reducing
// the reservation to one.
func (h *RSVPHandler) RemoveGuestView(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	target, ok, err := h.state.GetRemovalTarget(ctx, sid)
	if err != nil {
		response.InternalError(c, "could not load removal target")
		return
	}
	if !ok {
		response.Success(c, gin.H{"next": "home"})
		return
	}

	rsvp, err := h.svc.GetByID(ctx, target)
	if err != nil {
		_ = h.state.ClearRemovalTarget(ctx, sid)
		response.Success(c, gin.H{"next": "home"})
		return
	}

	guests, err := h.svc.Guests(ctx, rsvp.ID)
	if err != nil {
		response.InternalError(c, "could not load guests")
		return
	}
	response.Success(c, gin.H{"rsvp": summarize(rsvp), "guests": guests})
}

type removeGuestRequest struct {
	GuestNumber int `json:"guest_number"`
}

// RemoveGuestSubmit removes the chosen guest slot. When no guest info was
// ever entered there is nothing to remove and the step passes through.
func (h *RSVPHandler) RemoveGuestSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	target, ok, err := h.state.GetRemovalTarget(ctx, sid)
	if err != nil {
		response.InternalError(c, "could not load removal target")
		return
	}
	if !ok {
		response.Success(c, gin.H{"next": "home"})
		return
	}

	rsvp, err := h.svc.GetByID(ctx, target)
	if err != nil {
		_ = h.state.ClearRemovalTarget(ctx, sid)
		response.Success(c, gin.H{"next": "home"})
		return
	}

	guests, err := h.svc.Guests(ctx, rsvp.ID)
	if err != nil {
		response.InternalError(c, "could not load guests")
		return
	}

	if len(guests) > 0 {
		var req removeGuestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
		if err := h.svc.RemoveGuest(ctx, rsvp.ID, req.GuestNumber); err != nil {
			writeServiceError(c, err)
			return
		}
	}

	if err := h.state.ClearRemovalTarget(ctx, sid); err != nil {
		response.InternalError(c, "could not clear removal target")
		return
	}
	if err := h.state.PutDisplayReservationID(ctx, sid, rsvp.ReservationID); err != nil {
		response.InternalError(c, "could not record reservation id")
		return
	}
	response.Success(c, gin.H{"next": "success", "reservation_id": rsvp.ReservationID})
}

// SuccessView shows the reservation id exactly once; a refresh falls back
// to the returning-user cookie, and otherwise shows nothing.
func (h *RSVPHandler) SuccessView(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	rid, err := h.state.TakeDisplayReservationID(ctx, sid)
	if err != nil {
		response.InternalError(c, "could not load reservation id")
		return
	}
	if rid == "" {
		if rsvp := h.resolveReturning(c); rsvp != nil {
			rid = rsvp.ReservationID
		}
	}
	response.Success(c, gin.H{"reservation_id": rid})
}
