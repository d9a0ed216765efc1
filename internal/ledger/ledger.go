// Package ledger models the external XRPL collaborator as a capability
// interface. Handlers depend only on Client, so the mock testnet client
// can be swapped for a real backend without touching ledger-operation
// logic.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/util"
)

var ErrNotConnected = errors.New("not connected to XRPL")

type Kind string

const (
	KindStake   Kind = "stake"
	KindUnstake Kind = "unstake"
	KindSlash   Kind = "slash"
	KindReview  Kind = "review"
)

// Intent describes the ledger transaction a handler wants submitted.
type Intent struct {
	Kind    Kind
	Account string
	Amount  float64
	Memo    string
}

// Receipt carries the opaque identifiers returned by the ledger.
// NFTokenID is set only for stake intents.
type Receipt struct {
	TxHash    string
	NFTokenID string
}

type Client interface {
	Submit(ctx context.Context, intent Intent) (Receipt, error)
	Connected() bool
	Network() string
}

// Mock fabricates transaction hashes and NFToken ids with an optional
// artificial delay, standing in for a real XRPL testnet client.
type Mock struct {
	network string
	delay   time.Duration

	mu        sync.Mutex
	connected bool
}

func NewMock(delay time.Duration) *Mock {
	return &Mock{network: "xrpl-testnet", delay: delay}
}

func (m *Mock) Connect() {
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	logrus.Infof("connected to %s", m.network)
}

func (m *Mock) Disconnect() {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	logrus.Infof("disconnected from %s", m.network)
}

func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Mock) Network() string {
	return m.network
}

func (m *Mock) Submit(ctx context.Context, intent Intent) (Receipt, error) {
	if !m.Connected() {
		return Receipt{}, ErrNotConnected
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	receipt := Receipt{TxHash: "0x" + util.RandToken(13)}
	if intent.Kind == KindStake {
		receipt.NFTokenID = "NFT-" + util.RandToken(13)
	}
	return receipt, nil
}
