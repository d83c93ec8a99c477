package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferChainWalk(t *testing.T) {
	status := TransferPendingPembimbing

	next, ok := status.Next()
	require.True(t, ok)
	assert.Equal(t, TransferPendingKaprog, next)

	next, ok = next.Next()
	require.True(t, ok)
	assert.Equal(t, TransferPendingKoordinator, next)

	next, ok = next.Next()
	require.True(t, ok)
	assert.Equal(t, TransferApproved, next)
	assert.True(t, next.Terminal())

	_, ok = next.Next()
	assert.False(t, ok)
}

func TestHatForLink(t *testing.T) {
	cases := map[TransferStatus]Hat{
		TransferPendingPembimbing:  HatPembimbing,
		TransferPendingKaprog:      HatKaprog,
		TransferPendingKoordinator: HatKoordinator,
	}
	for status, want := range cases {
		hat, ok := status.HatForLink()
		require.True(t, ok)
		assert.Equal(t, want, hat)
	}

	_, ok := TransferApproved.HatForLink()
	assert.False(t, ok)
	_, ok = TransferRejected.HatForLink()
	assert.False(t, ok)
}
