package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHatsOrdering(t *testing.T) {
	res := ResolveHats(&RoleFlags{IsKaprog: true, IsPembimbing: true, IsWaliKelas: true})
	require.Len(t, res.Hats, 3)
	assert.Equal(t, HatKaprog, res.Primary.Hat)
	assert.Equal(t, HatWaliKelas, res.Hats[1].Hat)
	assert.Equal(t, HatPembimbing, res.Hats[2].Hat)
	assert.False(t, res.FallbackApplied)
}

func TestResolveHatsKoordinatorBeatsWaliKelas(t *testing.T) {
	res := ResolveHats(&RoleFlags{IsKoordinator: true, IsWaliKelas: true})
	assert.Equal(t, HatKoordinator, res.Primary.Hat)
}

func TestResolveHatsFallback(t *testing.T) {
	for _, flags := range []*RoleFlags{nil, {}} {
		res := ResolveHats(flags)
		require.Len(t, res.Hats, 1)
		assert.Equal(t, HatPembimbing, res.Primary.Hat)
		assert.True(t, res.FallbackApplied)
	}
}

func TestJWTClaimsHasHat(t *testing.T) {
	claims := &JWTClaims{Role: RoleGuru, Flags: &RoleFlags{IsKaprog: true}}
	assert.True(t, claims.HasHat(HatKaprog))
	assert.False(t, claims.HasHat(HatKoordinator))

	// no flags at all still answers the pembimbing fallback
	bare := &JWTClaims{Role: RoleGuru}
	assert.True(t, bare.HasHat(HatPembimbing))
}
