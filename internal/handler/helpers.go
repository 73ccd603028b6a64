package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/response"
	"github.com/westpoint-events/rsvpd/pkg/token"
)

const (
	// cookieReturning is the long-lived returning-user token: a signed
	// reference to a reservation, re-validated on every use.
	cookieReturning = "rsvp_token"
	// cookieSession keys the short-lived multi-step form state.
	cookieSession = "rsvp_session"

	sessionCookieTTL = 24 * time.Hour
)

// Sessions issues and reads the two cookies the workflow relies on.
type Sessions struct {
	tokens    *token.Manager
	cookieTTL time.Duration
	secure    bool
}

func NewSessions(tokens *token.Manager, cookieTTL time.Duration, secure bool) *Sessions {
	return &Sessions{tokens: tokens, cookieTTL: cookieTTL, secure: secure}
}

// SessionID returns the visitor's workflow session id, minting the cookie
// on first contact.
func (s *Sessions) SessionID(c *gin.Context) string {
	if sid, err := c.Cookie(cookieSession); err == nil && sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
	}
	sid := uuid.New().String()
	s.setCookie(c, cookieSession, sid, int(sessionCookieTTL.Seconds()))
	return sid
}

// SetReturning points the browser's long-lived cookie at a reservation.
func (s *Sessions) SetReturning(c *gin.Context, rsvpID uuid.UUID) error {
	signed, err := s.tokens.GenerateReturningToken(rsvpID)
	if err != nil {
		return err
	}
	s.setCookie(c, cookieReturning, signed, int(s.cookieTTL.Seconds()))
	return nil
}

func (s *Sessions) ClearReturning(c *gin.Context) {
	s.setCookie(c, cookieReturning, "", -1)
}

// ReturningRSVPID extracts the reservation id from a valid returning-user
// cookie. The record may have been deleted since; callers must re-resolve.
func (s *Sessions) ReturningRSVPID(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(cookieReturning)
	if err != nil || raw == "" {
		return uuid.Nil, false
	}
	id, err := s.tokens.ValidateReturningToken(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Sessions) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

// writeServiceError maps service sentinels onto the HTTP error contract.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidGuestCount),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrGuestInfoIncomplete):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrGuestLimitReached):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrIDGenerationExhausted):
		response.ServiceUnavailable(c, "could not assign a reservation id, please try again")
	default:
		response.InternalError(c, "internal server error")
	}
}

// rsvpSummary is the public shape of a reservation.
type rsvpSummary struct {
	ID            uuid.UUID           `json:"id"`
	ReservationID string              `json:"reservation_id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	NumGuests     int                 `json:"num_guests"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

func summarize(r *model.RSVP) rsvpSummary {
	return rsvpSummary{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		Name:          r.Name,
		Email:         r.Email,
		NumGuests:     r.NumGuests,
		PaymentStatus: r.PaymentStatus,
	}
}
