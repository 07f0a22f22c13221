package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potluckhq/potluck/internal/model"
)

// seedLedgerParty builds a party with one dish on the menu and n
// participants. Returned participant user IDs are "user-0".."user-n-1";
// the host is "host" and is not a participant.
func seedLedgerParty(t *testing.T, s *fakeStore, amountPerPerson float64, n int) (partyID, dishID string) {
	t.Helper()
	ctx := context.Background()

	party := &model.Party{ID: "party-1", Name: "Housewarming", HostID: "host", Status: model.PartyStatusOpen, Privacy: model.PartyPrivacyPublic}
	require.NoError(t, s.Parties().Create(ctx, party))

	dish := &model.Dish{ID: "dish-1", Name: "Potato salad"}
	require.NoError(t, s.Dishes().Create(ctx, dish))
	require.NoError(t, s.PartyDishes().Create(ctx, &model.PartyDish{
		PartyID:         party.ID,
		DishID:          dish.ID,
		AmountPerPerson: amountPerPerson,
		Unit:            "kg",
	}))

	for i := 0; i < n; i++ {
		require.NoError(t, s.Participants().Create(ctx, &model.PartyParticipant{
			ID:      "participant-" + string(rune('0'+i)),
			PartyID: party.ID,
			UserID:  "user-" + string(rune('0'+i)),
		}))
	}
	return party.ID, dish.ID
}

func TestLedgerCreateOrUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	// 2 kg per person, 3 attendees: 6 kg needed in total.
	partyID, dishID := seedLedgerParty(t, store, 2, 3)

	c, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, c.Amount)

	// 4 of 6 already covered, a further 3 does not fit.
	_, err = svc.CreateOrUpdate(ctx, partyID, dishID, "user-1", 3)
	var exceeds *ExceedsNeededError
	require.ErrorAs(t, err, &exceeds)
	assert.Equal(t, 2.0, exceeds.MaxAllowed)

	// Retrying with the reported maximum succeeds and closes the gap.
	_, err = svc.CreateOrUpdate(ctx, partyID, dishID, "user-1", 2)
	require.NoError(t, err)

	status, err := svc.DishStatus(ctx, partyID, dishID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, status.Needed)
	assert.Equal(t, 6.0, status.Contributed)
	assert.Equal(t, 0.0, status.Remaining)
}

func TestLedgerUpdateExcludesOwnPledge(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	partyID, dishID := seedLedgerParty(t, store, 2, 3)

	first, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", 4)
	require.NoError(t, err)

	// Raising the own pledge to the full needed amount is fine: the old
	// 4 kg row is excluded from the sum it is checked against.
	updated, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", 6)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, 6.0, updated.Amount)

	status, err := svc.DishStatus(ctx, partyID, dishID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, status.Contributed)
}

func TestLedgerValidation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	partyID, dishID := seedLedgerParty(t, store, 2, 2)

	_, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateOrUpdate(ctx, partyID, "no-such-dish", "user-0", 1)
	assert.ErrorIs(t, err, ErrPartyDishNotFound)

	_, err = svc.CreateOrUpdate(ctx, partyID, dishID, "stranger", 1)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestLedgerDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	partyID, dishID := seedLedgerParty(t, store, 2, 2)

	c, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-0", 3)
	require.NoError(t, err)

	// Neither another participant nor a stranger may delete it.
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "user-1"), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "stranger"), ErrForbidden)

	// The owner may.
	require.NoError(t, svc.Delete(ctx, c.ID, "user-0"))

	// A second delete of the same pledge reports not found.
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "user-0"), ErrContributionNotFound)

	// The host may delete any pledge.
	c2, err := svc.CreateOrUpdate(ctx, partyID, dishID, "user-1", 1)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, c2.ID, "host"))
}

func TestLedgerConcurrentPledges(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	// 6 kg needed; two pledges of 4 kg each individually fit but jointly
	// overshoot. Exactly one must commit.
	partyID, dishID := seedLedgerParty(t, store, 2, 3)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"user-0", "user-1"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrUpdate(ctx, partyID, dishID, user, 4)
		}(i, user)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var exceeds *ExceedsNeededError
		if errors.As(err, &exceeds) {
			assert.Equal(t, 2.0, exceeds.MaxAllowed)
			rejections++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	status, err := svc.DishStatus(ctx, partyID, dishID)
	require.NoError(t, err)
	assert.LessOrEqual(t, status.Contributed, status.Needed)
}

func TestDishStatusUnknownDish(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewLedgerService(store, nil, nil)

	partyID, _ := seedLedgerParty(t, store, 2, 1)
	_, err := svc.DishStatus(ctx, partyID, "no-such-dish")
	assert.ErrorIs(t, err, ErrPartyDishNotFound)
}
