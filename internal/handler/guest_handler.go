package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/response"
)

// GuestHandler serves the guest-info pages: reservation lookup, the
// read-only view, the per-guest form, and adding a second guest.
type GuestHandler struct {
	svc      service.RSVPService
	state    *repository.WorkflowState
	sessions *Sessions
	logger   *zap.Logger
}

func NewGuestHandler(svc service.RSVPService, state *repository.WorkflowState, sessions *Sessions, logger *zap.Logger) *GuestHandler {
	return &GuestHandler{svc: svc, state: state, sessions: sessions, logger: logger}
}

// resolveRSVP finds the reservation the guest-info flow is about: the
// returning-user cookie first, then an explicit reservationId query
// parameter, then the session's earlier lookup result.
func (h *GuestHandler) resolveRSVP(c *gin.Context) *model.RSVP {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	if id, ok := h.sessions.ReturningRSVPID(c); ok {
		if rsvp, err := h.svc.GetByID(ctx, id); err == nil {
			return rsvp
		}
		h.sessions.ClearReturning(c)
	}

	if rid := c.Query("reservationId"); rid != "" {
		if rsvp, err := h.svc.Lookup(ctx, rid); err == nil {
			_ = h.state.PutGuestInfoRSVP(ctx, sid, rsvp.ID)
			return rsvp
		}
	}

	if id, ok, err := h.state.GetGuestInfoRSVP(ctx, sid); err == nil && ok {
		rsvp, err := h.svc.GetByID(ctx, id)
		if err == nil {
			return rsvp
		}
		_ = h.state.ClearGuestInfoRSVP(ctx, sid)
	}
	return nil
}

type guestFieldsPayload struct {
	GuestNumber    int    `json:"guest_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	TitleRank      string `json:"title_rank"`
	MealPreference string `json:"meal_preference"`
	AllergyNotes   string `json:"allergy_notes"`
	FunFact        string `json:"fun_fact"`
}

// View renders the current guest-info state: lookup when no reservation is
// identified, the read-only view when guest rows exist, or the entry form.
// Rendering never mutates stored guest data.
func (h *GuestHandler) View(c *gin.Context) {
	ctx := c.Request.Context()

	rsvp := h.resolveRSVP(c)
	if rsvp == nil {
		response.Success(c, gin.H{"state": "lookup"})
		return
	}

	guests, err := h.svc.Guests(ctx, rsvp.ID)
	if err != nil {
		response.InternalError(c, "could not load guests")
		return
	}

	if len(guests) > 0 && c.Query("action") != "edit" {
		response.Success(c, gin.H{
			"state":          "view",
			"rsvp":           summarize(rsvp),
			"guests":         guests,
			"can_add_guest":  rsvp.NumGuests == 1,
			"payment_status": rsvp.PaymentStatus,
		})
		return
	}

	prefill := make([]guestFieldsPayload, 0, rsvp.NumGuests)
	for slot := 1; slot <= rsvp.NumGuests; slot++ {
		p := guestFieldsPayload{GuestNumber: slot, MealPreference: model.DefaultMealPreference}
		if g := guestAt(guests, slot); g != nil {
			p.FirstName = g.FirstName
			p.LastName = g.LastName
			p.TitleRank = g.TitleRank
			p.AllergyNotes = g.AllergyNotes
			p.FunFact = g.FunFact
		} else if slot == 1 {
			// Best-guess prefill from the household name.
			p.FirstName, p.LastName = service.SuggestGuestName(rsvp.Name)
		}
		prefill = append(prefill, p)
	}
	response.Success(c, gin.H{
		"state":   "form",
		"rsvp":    summarize(rsvp),
		"prefill": prefill,
	})
}

type lookupRequest struct {
	LookupValue string `json:"lookup_value"`
}

type saveGuestsRequest struct {
	Guests []guestFieldsPayload `json:"guests"`
}

// Submit handles both guest-info posts: a reservation lookup when no
// reservation is identified yet, and saving the per-guest fields.
func (h *GuestHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.sessions.SessionID(c)

	rsvp := h.resolveRSVP(c)
	if rsvp == nil {
		var req lookupRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.LookupValue == "" {
			response.BadRequest(c, "enter your reservation id or email")
			return
		}
		found, err := h.svc.Lookup(ctx, req.LookupValue)
		if err != nil {
			response.NotFound(c, "reservation not found, check your reservation id or email")
			return
		}
		if err := h.state.PutGuestInfoRSVP(ctx, sid, found.ID); err != nil {
			response.InternalError(c, "could not record lookup result")
			return
		}
		if err := h.sessions.SetReturning(c, found.ID); err != nil {
			response.InternalError(c, "could not set reservation cookie")
			return
		}
		response.Success(c, gin.H{"next": "guest-info", "rsvp": summarize(found)})
		return
	}

	var req saveGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Guests) == 0 {
		response.BadRequest(c, "guest details are required")
		return
	}

	inputs := make([]service.GuestInput, 0, len(req.Guests))
	for _, g := range req.Guests {
		// The second slot may be left blank on a two-guest reservation.
		if g.GuestNumber == 2 && g.FirstName == "" && g.LastName == "" {
			continue
		}
		inputs = append(inputs, service.GuestInput{
			GuestNumber:  g.GuestNumber,
			FirstName:    g.FirstName,
			LastName:     g.LastName,
			TitleRank:    g.TitleRank,
			AllergyNotes: g.AllergyNotes,
			FunFact:      g.FunFact,
		})
	}

	saved, err := h.svc.SaveGuestInfo(ctx, rsvp.ID, inputs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"next": "guest-info", "guests": saved})
}

// AddGuest grows the reservation to two guests and routes to the form for
// the new slot.
func (h *GuestHandler) AddGuest(c *gin.Context) {
	rsvp := h.resolveRSVP(c)
	if rsvp == nil {
		response.NotFound(c, "reservation not found")
		return
	}

	updated, err := h.svc.AddGuest(c.Request.Context(), rsvp.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"next": "guest-info?action=edit",
		"rsvp": summarize(updated),
	})
}

func guestAt(guests []model.Guest, slot int) *model.Guest {
	for i := range guests {
		if guests[i].GuestNumber == slot {
			return &guests[i]
		}
	}
	return nil
}
