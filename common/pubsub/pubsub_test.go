package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/eapache/channels"
	"github.com/stretchr/testify/require"
)

const (
	recvTimeout = 5 * time.Second
	bufferSize  = 5
)

func TestPubSub(t *testing.T) {
	t.Run("BasicInfinity", testBasicInfinity)
	t.Run("BasicOverwriting", testBasicOverwriting)
	t.Run("PubLastOnSubscribe", testLastOnSubscribe)
	t.Run("SubscribeEx", testSubscribeEx)
	t.Run("ContextSubscription", testContextSubscription)
}

func testBasicInfinity(t *testing.T) {
	broker := NewBroker(false)

	sub := broker.Subscribe()
	typedCh := make(chan int)
	sub.Unwrap(typedCh)

	for i := 0; i < 10; i++ {
		broker.Broadcast(i)
	}
	for i := 0; i < 10; i++ {
		select {
		case v := <-typedCh:
			require.Equal(t, i, v, "Buffered Broadcast()")
		case <-time.After(recvTimeout):
			t.Fatalf("Failed to receive value, buffered Broadcast()")
		}
	}

	require.Equal(t, 1, broker.SubscriberCount())
	require.NotPanics(t, func() { sub.Close() }, "Close()")
	require.NotPanics(t, func() { sub.Close() }, "double Close()")
	require.Equal(t, 0, broker.SubscriberCount(), "Subscriber map, post Close()")
}

func testBasicOverwriting(t *testing.T) {
	broker := NewBroker(false)

	sub := broker.SubscribeBuffered(bufferSize)
	typedCh := make(chan int)
	sub.Unwrap(typedCh)

	broker.Broadcast(23)
	select {
	case v := <-typedCh:
		require.Equal(t, 23, v, "Single Broadcast()")
	case <-time.After(recvTimeout):
		t.Fatalf("Failed to receive value, initial Broadcast()")
	}

	require.NotPanics(t, func() { sub.Close() }, "Close()")
	require.Equal(t, 0, broker.SubscriberCount(), "Subscriber map, post Close()")
}

func testLastOnSubscribe(t *testing.T) {
	broker := NewBroker(true)
	broker.Broadcast(23)

	for _, b := range []int64{
		int64(channels.Infinity),
		bufferSize,
	} {
		sub := broker.SubscribeBuffered(b)
		typedCh := make(chan int)
		sub.Unwrap(typedCh)

		select {
		case v := <-typedCh:
			require.Equal(t, 23, v, "Last Broadcast()")
		case <-time.After(recvTimeout):
			t.Fatalf("Failed to receive value, last Broadcast() on Subscribe()")
		}
	}
}

func testSubscribeEx(t *testing.T) {
	var brokerCh, callbackCh channels.Channel
	broker := NewBrokerEx(func(ch channels.Channel) {
		brokerCh = ch
	})

	sub := broker.SubscribeEx(bufferSize, func(ch channels.Channel) {
		callbackCh = ch
	})
	require.NotNil(t, sub.ch, "Subscription, inner channel")
	require.Equal(t, sub.ch, callbackCh, "Callback channel != Subscription, inner channel")
	require.Equal(t, sub.ch, brokerCh, "Broker hook channel != Subscription, inner channel")
}

func testContextSubscription(t *testing.T) {
	ctx, sub := NewContextSubscription(context.Background())
	require.NoError(t, ctx.Err())
	sub.Close()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
