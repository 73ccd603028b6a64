package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/westpoint-events/rsvpd/internal/model"
	"github.com/westpoint-events/rsvpd/internal/repository"
)

// requiredEmailDomain restricts reservations to institutional addresses.
const requiredEmailDomain = "@westpoint.edu"

// createAttempts bounds whole-record retries when a reservation id loses a
// race at the unique index despite the pre-check.
const createAttempts = 3

// GuestInput carries one guest slot's form fields. MealPreference is
// accepted for display parity but the stored value is always the default.
type GuestInput struct {
	GuestNumber  int
	FirstName    string
	LastName     string
	TitleRank    string
	AllergyNotes string
	FunFact      string
}

// SubmitOutcome is the result of deciding what an RSVP form submission
// means: a fresh creation, a direct update of the caller's own record, or a
// pending change that needs explicit confirmation because the email already
// belongs to another reservation.
type SubmitOutcome struct {
	RSVP              *model.RSVP
	Pending           *repository.PendingReservation
	Created           bool
	GuestCountReduced bool
}

type RSVPService interface {
	Create(ctx context.Context, name, email string, numGuests int) (*model.RSVP, error)
	Update(ctx context.Context, id uuid.UUID, name, email string, numGuests int) (rsvp *model.RSVP, guestCountReduced bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error)

	// Lookup resolves a reservation by its public reservation id or email.
	Lookup(ctx context.Context, value string) (*model.RSVP, error)

	// DecideSubmit runs the submission guard: current is the reservation the
	// visitor is editing (nil when starting fresh).
	DecideSubmit(ctx context.Context, current *model.RSVP, name, email string, numGuests int) (*SubmitOutcome, error)

	AddGuest(ctx context.Context, id uuid.UUID) (*model.RSVP, error)
	Guests(ctx context.Context, rsvpID uuid.UUID) ([]model.Guest, error)
	SaveGuestInfo(ctx context.Context, rsvpID uuid.UUID, inputs []GuestInput) ([]model.Guest, error)
	RemoveGuest(ctx context.Context, rsvpID uuid.UUID, guestNumber int) error
}

type rsvpService struct {
	repo   repository.RSVPRepository
	idGen  *reservationIDGenerator
	logger *zap.Logger
}

func NewRSVPService(repo repository.RSVPRepository, logger *zap.Logger) RSVPService {
	return &rsvpService{
		repo:   repo,
		idGen:  newReservationIDGenerator(),
		logger: logger,
	}
}

func (s *rsvpService) Create(ctx context.Context, name, email string, numGuests int) (*model.RSVP, error) {
	name, email, err := validateSubmission(name, email, numGuests)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		rid, err := s.idGen.Generate(ctx, name, s.repo.ReservationIDExists)
		if err != nil {
			return nil, err
		}

		rsvp := &model.RSVP{
			ReservationID: rid,
			Name:          name,
			Email:         email,
			NumGuests:     numGuests,
			PaymentStatus: model.PaymentNotPaid,
		}
		err = s.repo.Create(ctx, rsvp)
		if err == nil {
			s.logger.Info("reservation created",
				zap.String("reservation_id", rid),
				zap.Int("num_guests", numGuests))
			return rsvp, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create reservation: %w", err)
		}

		// The unique index rejected the row: either the email registered
		// concurrently, or the reservation id lost a race. Only the latter
		// is retryable.
		if _, lookupErr := s.repo.GetByEmail(ctx, email); lookupErr == nil {
			return nil, ErrDuplicateEmail
		}
	}
	return nil, ErrIDGenerationExhausted
}

func (s *rsvpService) Update(ctx context.Context, id uuid.UUID, name, email string, numGuests int) (*model.RSVP, bool, error) {
	name, email, err := validateSubmission(name, email, numGuests)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("load reservation: %w", err)
	}

	updated, err := s.repo.UpdateDetails(ctx, id, name, email, numGuests)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, ErrNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, false, ErrDuplicateEmail
		default:
			return nil, false, fmt.Errorf("update reservation: %w", err)
		}
	}

	reduced := updated.NumGuests < existing.NumGuests
	s.logger.Info("reservation updated",
		zap.String("reservation_id", updated.ReservationID),
		zap.Bool("guest_count_reduced", reduced))
	return updated, reduced, nil
}

func (s *rsvpService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	s.logger.Info("reservation deleted", zap.String("rsvp_id", id.String()))
	return nil
}

func (s *rsvpService) GetByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	rsvp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (s *rsvpService) Lookup(ctx context.Context, value string) (*model.RSVP, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrNotFound
	}

	if rsvp, err := s.repo.GetByReservationID(ctx, strings.ToUpper(value)); err == nil {
		return rsvp, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rsvp, err := s.repo.GetByEmail(ctx, strings.ToLower(value))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (s *rsvpService) DecideSubmit(ctx context.Context, current *model.RSVP, name, email string, numGuests int) (*SubmitOutcome, error) {
	name, email, err := validateSubmission(name, email, numGuests)
	if err != nil {
		return nil, err
	}

	owner, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email owner: %w", err)
	}

	// The submitted email already belongs to someone other than the record
	// being edited: stash the submission and ask before overwriting.
	if owner != nil && (current == nil || owner.ID != current.ID) {
		return &SubmitOutcome{
			Pending: &repository.PendingReservation{
				Name:      name,
				Email:     email,
				NumGuests: numGuests,
			},
		}, nil
	}

	if current == nil {
		rsvp, err := s.Create(ctx, name, email, numGuests)
		if err != nil {
			return nil, err
		}
		return &SubmitOutcome{RSVP: rsvp, Created: true}, nil
	}

	rsvp, reduced, err := s.Update(ctx, current.ID, name, email, numGuests)
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{RSVP: rsvp, GuestCountReduced: reduced}, nil
}

func (s *rsvpService) AddGuest(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	rsvp, err := s.repo.AddGuest(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrGuestLimit):
			return nil, ErrGuestLimitReached
		default:
			return nil, fmt.Errorf("add guest: %w", err)
		}
	}
	s.logger.Info("second guest added", zap.String("reservation_id", rsvp.ReservationID))
	return rsvp, nil
}

func (s *rsvpService) Guests(ctx context.Context, rsvpID uuid.UUID) ([]model.Guest, error) {
	return s.repo.ListGuests(ctx, rsvpID)
}

func (s *rsvpService) SaveGuestInfo(ctx context.Context, rsvpID uuid.UUID, inputs []GuestInput) ([]model.Guest, error) {
	saved := make([]model.Guest, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
			return nil, ErrGuestInfoIncomplete
		}
		guest := model.Guest{
			RSVPID:      rsvpID,
			GuestNumber: in.GuestNumber,
			FirstName:   strings.TrimSpace(in.FirstName),
			LastName:    strings.TrimSpace(in.LastName),
			TitleRank:   strings.TrimSpace(in.TitleRank),
			// Not user-chosen: one menu is served.
			MealPreference: model.DefaultMealPreference,
			AllergyNotes:   in.AllergyNotes,
			FunFact:        in.FunFact,
		}
		if err := s.repo.UpsertGuest(ctx, &guest); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("save guest %d: %w", in.GuestNumber, err)
		}
		saved = append(saved, guest)
	}
	return saved, nil
}

func (s *rsvpService) RemoveGuest(ctx context.Context, rsvpID uuid.UUID, guestNumber int) error {
	if guestNumber != 1 && guestNumber != 2 {
		return ErrGuestNotFound
	}
	if err := s.repo.RemoveGuest(ctx, rsvpID, guestNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestNotFound
		}
		return fmt.Errorf("remove guest: %w", err)
	}
	return nil
}

// validateSubmission normalizes and checks the three RSVP form fields.
func validateSubmission(name, email string, numGuests int) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrInvalidName
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", ErrInvalidEmail
	}
	if !strings.HasSuffix(email, requiredEmailDomain) {
		return "", "", ErrInvalidEmail
	}
	if numGuests != 1 && numGuests != 2 {
		return "", "", ErrInvalidGuestCount
	}
	return name, email, nil
}

// SuggestGuestName splits an RSVP's household name into a best-guess
// first/last pair used to prefill the first guest-info form.
func SuggestGuestName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch {
	case len(parts) >= 2:
		return parts[0], parts[len(parts)-1]
	case len(parts) == 1:
		return parts[0], ""
	default:
		return "", ""
	}
}
