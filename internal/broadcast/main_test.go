package broadcast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	n := New(4)
	a := n.Subscribe()
	b := n.Subscribe()
	defer a.Close()
	defer b.Close()

	update := Update{Order: &data.OrderKey{ChainID: 60}}
	n.Publish(update)

	got := <-a.Updates()
	require.Equal(t, data.ChainID(60), got.Order.ChainID)
	got = <-b.Updates()
	require.Equal(t, data.ChainID(60), got.Order.ChainID)
}

func TestLaggedSubscriberDropsUpdates(t *testing.T) {
	n := New(1)
	s := n.Subscribe()
	defer s.Close()

	n.Publish(Update{})
	n.Publish(Update{})

	require.True(t, s.Lagged())
	require.False(t, s.Lagged(), "the flag must clear once reported")

	// Only the first update fits the buffer.
	<-s.Updates()
	select {
	case <-s.Updates():
		t.Fatal("dropped update must not be delivered")
	default:
	}
}

func TestClosedSubscriberMissesPublish(t *testing.T) {
	n := New(1)
	s := n.Subscribe()
	s.Close()

	// Publishing after a close must neither panic nor deliver.
	n.Publish(Update{})

	_, ok := <-s.Updates()
	require.False(t, ok)
}

func TestSubscribersAreIndependent(t *testing.T) {
	n := New(1)
	slow := n.Subscribe()
	fast := n.Subscribe()
	defer slow.Close()
	defer fast.Close()

	n.Publish(Update{})
	<-fast.Updates()
	n.Publish(Update{})

	// The slow consumer lagged; the fast one saw everything.
	<-fast.Updates()
	require.False(t, fast.Lagged())
	require.True(t, slow.Lagged())
}
