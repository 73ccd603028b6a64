package service

import (
	"context"
	"path/filepath"
	"strings"
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

func newTestService(t *testing.T) (RSVPService, repository.RSVPRepository) {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "rsvp_test.db")),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	repo := repository.NewGormRSVPRepository(db)
	return NewRSVPService(repo, zap.NewNop()), repo
}

func TestCreate_AssignsUniqueReservationID(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	assert.Regexp(t, `^JD\d{4}$`, rsvp.ReservationID)
	assert.Equal(t, model.PaymentNotPaid, rsvp.PaymentStatus)

	found, err := repo.GetByEmail(ctx, "jdoe@westpoint.edu")
	require.NoError(t, err)
	assert.Equal(t, rsvp.ID, found.ID)
	assert.Equal(t, rsvp.ReservationID, found.ReservationID)
}

func TestCreate_NormalizesEmail(t *testing.T) {
	svc, _ := newTestService(t)

	rsvp, err := svc.Create(context.Background(), "Jane Doe", "  JDoe@Westpoint.EDU ", 1)
	require.NoError(t, err)
	assert.Equal(t, "jdoe@westpoint.edu", rsvp.Email)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		submitted [3]string // name, email
		numGuests int
		wantErr   error
	}{
		{"empty name", [3]string{"", "jdoe@westpoint.edu"}, 1, ErrInvalidName},
		{"wrong domain", [3]string{"Jane Doe", "jdoe@gmail.com"}, 1, ErrInvalidEmail},
		{"not an address", [3]string{"Jane Doe", "not-an-email"}, 1, ErrInvalidEmail},
		{"zero guests", [3]string{"Jane Doe", "jdoe@westpoint.edu"}, 0, ErrInvalidGuestCount},
		{"three guests", [3]string{"Jane Doe", "jdoe@westpoint.edu"}, 3, ErrInvalidGuestCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.submitted[0], tt.submitted[1], tt.numGuests)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "John Doe", "jdoe@westpoint.edu", 2)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdate_GuestCountIncreaseWithoutPaymentStaysNotPaid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	updated, reduced, err := svc.Update(ctx, rsvp.ID, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)
	assert.False(t, reduced)
	assert.Equal(t, 2, updated.NumGuests)
	assert.Equal(t, model.PaymentNotPaid, updated.PaymentStatus)
}

func TestUpdate_PaymentForcedOnGuestIncrease(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	require.NoError(t, repo.SetPaymentStatus(ctx, rsvp.ID, model.PaymentVenmo))

	updated, _, err := svc.Update(ctx, rsvp.ID, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentGuestsChangedOwed, updated.PaymentStatus)
}

func TestUpdate_GuestCountReducedFlag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)

	_, reduced, err := svc.Update(ctx, rsvp.ID, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	assert.True(t, reduced)
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "John Smith", "jsmith@westpoint.edu", 1)
	require.NoError(t, err)

	_, _, err = svc.Update(ctx, first.ID, "Jane Doe", "jsmith@westpoint.edu", 1)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Update(context.Background(), uuid.New(), "Jane Doe", "jdoe@westpoint.edu", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddGuest_ForcesPaymentThenRefusesSecondCall(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	require.NoError(t, repo.SetPaymentStatus(ctx, rsvp.ID, model.PaymentVenmo))

	updated, err := svc.AddGuest(ctx, rsvp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.NumGuests)
	assert.Equal(t, model.PaymentGuestsChangedOwed, updated.PaymentStatus)

	_, err = svc.AddGuest(ctx, rsvp.ID)
	assert.ErrorIs(t, err, ErrGuestLimitReached)
}

func TestSaveGuestInfo_ForcesMealPreference(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	saved, err := svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{{
		GuestNumber: 1,
		FirstName:   "Jane",
		LastName:    "Doe",
		TitleRank:   "CPT",
	}})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, model.DefaultMealPreference, saved[0].MealPreference)
}

func TestSaveGuestInfo_RejectsSlotBeyondGuestCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{{
		GuestNumber: 2,
		FirstName:   "John",
		LastName:    "Doe",
	}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveGuestInfo_Overwrites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{{
		GuestNumber: 1, FirstName: "Jane", LastName: "Doe",
	}})
	require.NoError(t, err)

	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{{
		GuestNumber: 1, FirstName: "Janet", LastName: "Doe", AllergyNotes: "peanuts",
	}})
	require.NoError(t, err)

	guests, err := svc.Guests(ctx, rsvp.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "Janet", guests[0].FirstName)
	assert.Equal(t, "peanuts", guests[0].AllergyNotes)
}

func TestRemoveGuest_RenumbersAndPreservesFields(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)
	require.NoError(t, repo.SetPaymentStatus(ctx, rsvp.ID, model.PaymentCashCheck))

	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{
		{GuestNumber: 1, FirstName: "Jane", LastName: "Doe"},
		{GuestNumber: 2, FirstName: "John", LastName: "Doe", FunFact: "plays tuba"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveGuest(ctx, rsvp.ID, 1))

	guests, err := svc.Guests(ctx, rsvp.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, 1, guests[0].GuestNumber)
	assert.Equal(t, "John", guests[0].FirstName)
	assert.Equal(t, "plays tuba", guests[0].FunFact)

	// Removal never changes payment status; only adding a guest does.
	after, err := svc.GetByID(ctx, rsvp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCashCheck, after.PaymentStatus)
}

func TestRemoveGuest_MissingSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveGuest(ctx, rsvp.ID, 2), ErrGuestNotFound)
	assert.ErrorIs(t, svc.RemoveGuest(ctx, rsvp.ID, 3), ErrGuestNotFound)
}

func TestDecideSubmit_Branches(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("fresh submission creates", func(t *testing.T) {
		outcome, err := svc.DecideSubmit(ctx, nil, "Jane Doe", "jdoe@westpoint.edu", 1)
		require.NoError(t, err)
		assert.True(t, outcome.Created)
		assert.Nil(t, outcome.Pending)
		require.NotNil(t, outcome.RSVP)
	})

	t.Run("colliding email goes pending", func(t *testing.T) {
		outcome, err := svc.DecideSubmit(ctx, nil, "Jane Again", "jdoe@westpoint.edu", 2)
		require.NoError(t, err)
		assert.Nil(t, outcome.RSVP)
		require.NotNil(t, outcome.Pending)
		assert.Equal(t, "jdoe@westpoint.edu", outcome.Pending.Email)
		assert.Equal(t, 2, outcome.Pending.NumGuests)
	})

	t.Run("own record updates directly", func(t *testing.T) {
		current, err := svc.Lookup(ctx, "jdoe@westpoint.edu")
		require.NoError(t, err)

		outcome, err := svc.DecideSubmit(ctx, current, "Jane Doe", "jdoe@westpoint.edu", 2)
		require.NoError(t, err)
		assert.False(t, outcome.Created)
		assert.Nil(t, outcome.Pending)
		assert.Equal(t, 2, outcome.RSVP.NumGuests)
	})

	t.Run("own record switching to foreign email goes pending", func(t *testing.T) {
		_, err := svc.Create(ctx, "John Smith", "jsmith@westpoint.edu", 1)
		require.NoError(t, err)
		current, err := svc.Lookup(ctx, "jdoe@westpoint.edu")
		require.NoError(t, err)

		outcome, err := svc.DecideSubmit(ctx, current, "Jane Doe", "jsmith@westpoint.edu", 1)
		require.NoError(t, err)
		require.NotNil(t, outcome.Pending)
	})
}

func TestLookup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)

	byRID, err := svc.Lookup(ctx, created.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byRID.ID)

	// Lookups are case-insensitive on both keys.
	byLowerRID, err := svc.Lookup(ctx, strings.ToLower(created.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, created.ID, byLowerRID.ID)

	byEmail, err := svc.Lookup(ctx, "JDoe@westpoint.edu")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Lookup(ctx, "ZZ0000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Cascades(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)
	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{
		{GuestNumber: 1, FirstName: "Jane", LastName: "Doe"},
		{GuestNumber: 2, FirstName: "John", LastName: "Doe"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rsvp.ID))

	_, err = svc.GetByID(ctx, rsvp.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	guests, err := repo.ListGuests(ctx, rsvp.ID)
	require.NoError(t, err)
	assert.Empty(t, guests)

	assert.ErrorIs(t, svc.Delete(ctx, rsvp.ID), ErrNotFound)
}

// Full walkthrough of the reservation lifecycle.
func TestReservationLifecycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rsvp, err := svc.Create(ctx, "Jane Doe", "jdoe@westpoint.edu", 1)
	require.NoError(t, err)
	assert.Regexp(t, `^JD\d{4}$`, rsvp.ReservationID)

	// Growing an unpaid reservation does not touch payment status.
	updated, _, err := svc.Update(ctx, rsvp.ID, "Jane Doe", "jdoe@westpoint.edu", 2)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentNotPaid, updated.PaymentStatus)

	require.NoError(t, repo.SetPaymentStatus(ctx, rsvp.ID, model.PaymentVenmo))

	_, err = svc.AddGuest(ctx, rsvp.ID)
	assert.ErrorIs(t, err, ErrGuestLimitReached)

	_, err = svc.SaveGuestInfo(ctx, rsvp.ID, []GuestInput{
		{GuestNumber: 1, FirstName: "Jane", LastName: "Doe"},
		{GuestNumber: 2, FirstName: "John", LastName: "Doe"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveGuest(ctx, rsvp.ID, 1))

	guests, err := svc.Guests(ctx, rsvp.ID)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, 1, guests[0].GuestNumber)
	assert.Equal(t, "John", guests[0].FirstName)

	after, err := svc.GetByID(ctx, rsvp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentVenmo, after.PaymentStatus)
}
