package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
)

type AdminService interface {
	// ListResponses returns every reservation, newest first, with guests.
	ListResponses(ctx context.Context) ([]model.RSVP, error)

	// ListGuests returns every guest row across all reservations.
	ListGuests(ctx context.Context) ([]model.Guest, error)

	SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.RSVP, error)
}

type adminService struct {
	repo   repository.RSVPRepository
	logger *zap.Logger
}

func NewAdminService(repo repository.RSVPRepository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) ListResponses(ctx context.Context) ([]model.RSVP, error) {
	return s.repo.ListAll(ctx)
}

func (s *adminService) ListGuests(ctx context.Context) ([]model.Guest, error) {
	return s.repo.ListAllGuests(ctx)
}

func (s *adminService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.RSVP, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	if err := s.repo.SetPaymentStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set payment status: %w", err)
	}
	s.logger.Info("payment status updated",
		zap.String("rsvp_id", id.String()),
		zap.String("status", string(status)))
	return s.repo.GetByID(ctx, id)
}
