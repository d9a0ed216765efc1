package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMockSubmitReceipts(t *testing.T) {
	m := NewMock(0)
	m.Connect()

	receipt, err := m.Submit(context.Background(), Intent{Kind: KindStake, Account: "rTest1", Amount: 1000})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(receipt.TxHash, "0x"))
	require.True(t, strings.HasPrefix(receipt.NFTokenID, "NFT-"))

	receipt, err = m.Submit(context.Background(), Intent{Kind: KindUnstake, Account: "rTest1"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(receipt.TxHash, "0x"))
	require.Empty(t, receipt.NFTokenID)
}

func TestMockSubmitRequiresConnection(t *testing.T) {
	m := NewMock(0)

	_, err := m.Submit(context.Background(), Intent{Kind: KindStake})
	require.ErrorIs(t, err, ErrNotConnected)

	m.Connect()
	_, err = m.Submit(context.Background(), Intent{Kind: KindStake})
	require.NoError(t, err)

	m.Disconnect()
	_, err = m.Submit(context.Background(), Intent{Kind: KindStake})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestMockSubmitHonorsCancellation(t *testing.T) {
	m := NewMock(time.Second)
	m.Connect()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Submit(ctx, Intent{Kind: KindSlash})
	require.ErrorIs(t, err, context.Canceled)
}
