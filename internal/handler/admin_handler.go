package handler

import (
	"crypto/subtle"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/service"
	"github.com/westpoint-events/rsvpd/pkg/response"
	"github.com/westpoint-events/rsvpd/pkg/token"
)

// AdminHandler serves the read-and-render admin views and the payment
// status mutation.
type AdminHandler struct {
	svc        service.AdminService
	tokens     *token.Manager
	adminToken string
}

func NewAdminHandler(svc service.AdminService, tokens *token.Manager, adminToken string) *AdminHandler {
	return &AdminHandler{svc: svc, tokens: tokens, adminToken: adminToken}
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the shared admin credential for a session token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminToken)) != 1 {
		response.Unauthorized(c, "incorrect password")
		return
	}

	signed, err := h.tokens.GenerateAdminToken()
	if err != nil {
		response.InternalError(c, "could not issue session token")
		return
	}
	response.Success(c, gin.H{"token": signed})
}

// ListResponses returns every reservation with its guests, newest first.
func (h *AdminHandler) ListResponses(c *gin.Context) {
	rsvps, err := h.svc.ListResponses(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list responses")
		return
	}
	response.Success(c, rsvps)
}

// GuestList returns every guest row across all reservations.
func (h *AdminHandler) GuestList(c *gin.Context) {
	guests, err := h.svc.ListGuests(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list guests")
		return
	}
	response.Success(c, guests)
}

// PaymentTracking lists reservations ordered by name for the payment
// status table.
func (h *AdminHandler) PaymentTracking(c *gin.Context) {
	rsvps, err := h.svc.ListResponses(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list reservations")
		return
	}
	sort.Slice(rsvps, func(i, j int) bool { return rsvps[i].Name < rsvps[j].Name })
	response.Success(c, rsvps)
}

type setPaymentStatusRequest struct {
	RSVPID        uuid.UUID           `json:"rsvp_id" binding:"required"`
	PaymentStatus model.PaymentStatus `json:"payment_status" binding:"required"`
}

// SetPaymentStatus records a payment state change for one reservation.
func (h *AdminHandler) SetPaymentStatus(c *gin.Context) {
	var req setPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rsvp, err := h.svc.SetPaymentStatus(c.Request.Context(), req.RSVPID, req.PaymentStatus)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, summarize(rsvp))
}
