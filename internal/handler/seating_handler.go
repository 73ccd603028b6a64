package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/response"
)

// SeatingHandler lets a household rank which other reservations they would
// like to sit near.
type SeatingHandler struct {
	svc      service.SeatingService
	rsvps    service.RSVPService
	state    *repository.WorkflowState
	sessions *Sessions
}

func NewSeatingHandler(svc service.SeatingService, rsvps service.RSVPService, state *repository.WorkflowState, sessions *Sessions) *SeatingHandler {
	return &SeatingHandler{svc: svc, rsvps: rsvps, state: state, sessions: sessions}
}

func (h *SeatingHandler) resolveRSVP(c *gin.Context) *model.RSVP {
	ctx := c.Request.Context()

	if id, ok := h.sessions.ReturningRSVPID(c); ok {
		if rsvp, err := h.rsvps.GetByID(ctx, id); err == nil {
			return rsvp
		}
		h.sessions.ClearReturning(c)
	}

	sid := h.sessions.SessionID(c)
	if id, ok, err := h.state.GetGuestInfoRSVP(ctx, sid); err == nil && ok {
		if rsvp, err := h.rsvps.GetByID(ctx, id); err == nil {
			return rsvp
		}
	}
	return nil
}

func (h *SeatingHandler) Board(c *gin.Context) {
	rsvp := h.resolveRSVP(c)
	if rsvp == nil {
		response.NotFound(c, "look up your reservation first")
		return
	}

	board, err := h.svc.Board(c.Request.Context(), rsvp.ID)
	if err != nil {
		if errors.Is(err, service.ErrNothingToRank) {
			response.Success(c, gin.H{"ranked": []service.SeatingEntry{}, "unranked": []service.SeatingEntry{}})
			return
		}
		response.InternalError(c, "could not load seating board")
		return
	}
	response.Success(c, board)
}

type rankRequest struct {
	RankedIDs []uuid.UUID `json:"ranked_ids"`
}

func (h *SeatingHandler) Rank(c *gin.Context) {
	rsvp := h.resolveRSVP(c)
	if rsvp == nil {
		response.NotFound(c, "look up your reservation first")
		return
	}

	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Rank(c.Request.Context(), rsvp.ID, req.RankedIDs); err != nil {
		response.InternalError(c, "could not save seating preferences")
		return
	}
	response.SuccessMessage(c, "seating preferences saved")
}
