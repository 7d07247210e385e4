package usecase

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/domain/entity"
	"foodshare/pkg/errors"
)

func TestPartialClaimsExhaustListing(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	for _, id := range []string{"a", "b", "c"} {
		f.profile(t, id, entity.RoleReceiver)
	}
	l := f.listing(t, "donor", 10)

	claimA, err := f.claims.CreateClaim(f.ctx, "a", l.ID, 6, "Picking up for the shelter")
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimPending, claimA.Status)
	assert.Equal(t, 6, claimA.QuantityClaimed)
	assert.Equal(t, l.DonorProfileID, claimA.DonorProfileID)

	after := f.reload(t, l.ID)
	assert.Equal(t, 4, after.Available())
	assert.Equal(t, entity.ListingActive, after.Status)
	assert.Empty(t, after.ClaimedBy)

	claimB, err := f.claims.CreateClaim(f.ctx, "b", l.ID, 4, "")
	require.NoError(t, err)

	after = f.reload(t, l.ID)
	assert.Equal(t, 0, after.Available())
	assert.Equal(t, entity.ListingClaimed, after.Status)
	assert.Equal(t, claimB.ReceiverProfileID, after.ClaimedBy)
	require.NotNil(t, after.ClaimedAt)
	assert.Equal(t, baseTime, *after.ClaimedAt)

	_, err = f.claims.CreateClaim(f.ctx, "c", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestCreateClaimExceedingAvailability(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "a", entity.RoleReceiver)
	f.profile(t, "b", entity.RoleReceiver)
	l := f.listing(t, "donor", 10)

	_, err := f.claims.CreateClaim(f.ctx, "a", l.ID, 6, "")
	require.NoError(t, err)

	_, err = f.claims.CreateClaim(f.ctx, "b", l.ID, 5, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	assert.Contains(t, err.Error(), "Only 4 serving available")

	assert.Equal(t, 4, f.reload(t, l.ID).Available())
}

func TestCreateClaimInputAndRoles(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 3)

	_, err := f.claims.CreateClaim(f.ctx, "", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = f.claims.CreateClaim(f.ctx, "donor", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.claims.CreateClaim(f.ctx, "no-profile", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.claims.CreateClaim(f.ctx, "receiver", "missing", 1, "")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.claims.CreateClaim(f.ctx, "receiver", l.ID, -2, "")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, claim.QuantityClaimed)
	assert.Equal(t, 2, f.reload(t, l.ID).Available())
}

func TestCreateClaimRateLimited(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.claims.rateLimiter = denyLimiter{}
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 3)

	_, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	assert.Equal(t, 3, f.reload(t, l.ID).Available())
}

func TestOneLiveClaimPerReceiver(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 10)

	first, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 2, "")
	require.NoError(t, err)

	_, err = f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = f.claims.RespondToClaim(f.ctx, "donor", first.ID, DecisionAccepted)
	require.NoError(t, err)

	_, err = f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeConflict))

	other := f.listing(t, "donor", 10)
	second, err := f.claims.CreateClaim(f.ctx, "receiver", other.ID, 2, "")
	require.NoError(t, err)
	_, err = f.claims.RespondToClaim(f.ctx, "donor", second.ID, DecisionRejected)
	require.NoError(t, err)

	_, err = f.claims.CreateClaim(f.ctx, "receiver", other.ID, 1, "")
	assert.NoError(t, err)
}

func TestRejectSingleUnitListing(t *testing.T) {
	tests := []struct {
		name          string
		restore       bool
		wantAvailable int
	}{
		{"restores quantity", true, 1},
		{"legacy keeps quantity reserved", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultClaimPolicy()
			policy.RestoreQuantityOnReject = tt.restore
			f := newFixture(t, policy)
			f.profile(t, "donor", entity.RoleDonor)
			f.profile(t, "receiver", entity.RoleReceiver)
			l := f.listing(t, "donor", 1)

			claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
			require.NoError(t, err)

			claimed := f.reload(t, l.ID)
			assert.Equal(t, 0, claimed.Available())
			assert.Equal(t, entity.ListingClaimed, claimed.Status)

			rejected, err := f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionRejected)
			require.NoError(t, err)
			assert.Equal(t, entity.ClaimRejected, rejected.Status)

			after := f.reload(t, l.ID)
			assert.Equal(t, entity.ListingActive, after.Status)
			assert.Equal(t, tt.wantAvailable, after.Available())
			assert.Empty(t, after.ClaimedBy)
			assert.Nil(t, after.ClaimedAt)
		})
	}
}

func TestRejectPartialClaimReturnsUnits(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "a", entity.RoleReceiver)
	f.profile(t, "b", entity.RoleReceiver)
	l := f.listing(t, "donor", 10)

	claimA, err := f.claims.CreateClaim(f.ctx, "a", l.ID, 6, "")
	require.NoError(t, err)
	_, err = f.claims.CreateClaim(f.ctx, "b", l.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.reload(t, l.ID).Available())

	_, err = f.claims.RespondToClaim(f.ctx, "donor", claimA.ID, DecisionRejected)
	require.NoError(t, err)

	after := f.reload(t, l.ID)
	assert.Equal(t, 7, after.Available())
	assert.LessOrEqual(t, after.Available(), after.Total())
	assert.Equal(t, entity.ListingActive, after.Status)
}

func TestRejectKeepsExpiredListingExpired(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 5)

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.listings.ExpireListing(f.ctx, l.ID))

	_, err = f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionRejected)
	require.NoError(t, err)

	after := f.reload(t, l.ID)
	assert.Equal(t, entity.ListingExpired, after.Status)
	assert.Equal(t, 4, after.Available())
}

func TestRespondToClaim(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "other-donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 4)

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 2, "")
	require.NoError(t, err)

	_, err = f.claims.RespondToClaim(f.ctx, "other-donor", claim.ID, DecisionAccepted)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.claims.RespondToClaim(f.ctx, "receiver", claim.ID, DecisionAccepted)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.claims.RespondToClaim(f.ctx, "donor", claim.ID, "maybe")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.claims.RespondToClaim(f.ctx, "donor", "missing", DecisionAccepted)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	accepted, err := f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionAccepted)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimAccepted, accepted.Status)
	assert.Equal(t, 2, f.reload(t, l.ID).Available())

	_, err = f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionRejected)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestRejectAfterListingDeleted(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 5)

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.listings.DeleteListing(f.ctx, "donor", l.ID))

	rejected, err := f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionRejected)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimRejected, rejected.Status)
}

func TestCompleteClaim(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	f.profile(t, "stranger", entity.RoleReceiver)
	l := f.listing(t, "donor", 4)

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 2, "")
	require.NoError(t, err)

	_, err = f.claims.CompleteClaim(f.ctx, "receiver", claim.ID)
	assert.True(t, errors.Is(err, errors.CodeInvalidState))

	_, err = f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionAccepted)
	require.NoError(t, err)

	_, err = f.claims.CompleteClaim(f.ctx, "", claim.ID)
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = f.claims.CompleteClaim(f.ctx, "stranger", claim.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	completed, err := f.claims.CompleteClaim(f.ctx, "receiver", claim.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimCompleted, completed.Status)
	assert.Equal(t, entity.ListingCompleted, f.reload(t, l.ID).Status)

	_, err = f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	assert.True(t, errors.Is(err, errors.CodeInvalidState))
}

func TestCompleteClaimUnrestricted(t *testing.T) {
	policy := DefaultClaimPolicy()
	policy.RestrictCompleteToParties = false
	f := newFixture(t, policy)
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	l := f.listing(t, "donor", 1)

	claim, err := f.claims.CreateClaim(f.ctx, "receiver", l.ID, 1, "")
	require.NoError(t, err)
	_, err = f.claims.RespondToClaim(f.ctx, "donor", claim.ID, DecisionAccepted)
	require.NoError(t, err)

	completed, err := f.claims.CompleteClaim(f.ctx, "any-signed-in-user", claim.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimCompleted, completed.Status)
	assert.Equal(t, entity.ListingCompleted, f.reload(t, l.ID).Status)
}

func TestConcurrentClaimsNeverOverAllocate(t *testing.T) {
	const (
		total     = 5
		receivers = 20
	)

	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	for i := 0; i < receivers; i++ {
		f.profile(t, fmt.Sprintf("receiver-%d", i), entity.RoleReceiver)
	}
	l := f.listing(t, "donor", total)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < receivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.claims.CreateClaim(f.ctx, fmt.Sprintf("receiver-%d", i), l.ID, 1, "")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, errors.CodeInvalidState) && !errors.Is(err, errors.CodeBadRequest) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, total, successes)

	after := f.reload(t, l.ID)
	assert.Equal(t, 0, after.Available())
	assert.Equal(t, entity.ListingClaimed, after.Status)

	donor, err := f.claims.GetClaimsForDonor(f.ctx, "donor")
	require.NoError(t, err)
	assert.Len(t, donor, total)
}

func TestClaimQueries(t *testing.T) {
	f := newFixture(t, DefaultClaimPolicy())
	f.profile(t, "donor", entity.RoleDonor)
	f.profile(t, "receiver", entity.RoleReceiver)
	first := f.listing(t, "donor", 3)
	second := f.listing(t, "donor", 3)

	_, err := f.claims.CreateClaim(f.ctx, "receiver", first.ID, 1, "")
	require.NoError(t, err)
	f.advance(time.Second)
	_, err = f.claims.CreateClaim(f.ctx, "receiver", second.ID, 2, "")
	require.NoError(t, err)

	mine, err := f.claims.GetMyClaims(f.ctx, "receiver")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ListingID)
	require.NotNil(t, mine[0].Listing)
	assert.Equal(t, "Fresh bread", mine[0].Listing.Title)
	require.NotNil(t, mine[0].Donor)
	assert.Equal(t, "User donor", mine[0].Donor.Name)
	assert.Nil(t, mine[0].Receiver)

	incoming, err := f.claims.GetClaimsForDonor(f.ctx, "donor")
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	require.NotNil(t, incoming[0].Receiver)
	assert.Equal(t, "User receiver", incoming[0].Receiver.Name)

	none, err := f.claims.GetMyClaims(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	none, err = f.claims.GetClaimsForDonor(f.ctx, "receiver")
	require.NoError(t, err)
	assert.Empty(t, none)
}
