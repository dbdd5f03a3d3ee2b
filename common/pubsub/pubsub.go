// Package pubsub implements a generic publish-subscribe interface used to
// fan out ledger events to watchers.
package pubsub

import (
	"context"
	"sync"

	"github.com/eapache/channels"
)

// ClosableSubscription is an interface for a subscription that can be
// closed.
type ClosableSubscription interface {
	// Close cleans up the subscription.
	Close()
}

// Subscription is a Broker subscription instance.
type Subscription struct {
	b     *Broker
	ch    channels.Channel
	index uint64
}

// Untyped returns the subscription's untyped output. Effort should be
// made to use Unwrap instead.
func (s *Subscription) Untyped() <-chan interface{} {
	return s.ch.Out()
}

// Unwrap ties the read end of the provided typed channel to the
// subscription's output.
func (s *Subscription) Unwrap(into interface{}) {
	channels.Unwrap(s.ch, into)
}

// Close unsubscribes from the Broker.
func (s *Subscription) Close() {
	s.b.Lock()
	defer s.b.Unlock()

	if _, ok := s.b.subscribers[s.index]; !ok {
		return
	}
	delete(s.b.subscribers, s.index)
	s.ch.Close()
}

// OnSubscribeHook is the on-subscribe callback hook prototype.
type OnSubscribeHook func(channels.Channel)

// Broker is a pub/sub broker instance.
type Broker struct {
	sync.Mutex

	subscribers map[uint64]*Subscription
	nextIndex   uint64

	lastElem        interface{}
	hasLastElem     bool
	pubLastOnSub    bool
	onSubscribeHook OnSubscribeHook
}

// Subscribe subscribes to the Broker's broadcasts, and returns a
// subscription handle that can be used to receive broadcasts.
//
// Note: The returned subscription's channel will have an unbounded
// capacity.
func (b *Broker) Subscribe() *Subscription {
	return b.SubscribeBuffered(int64(channels.Infinity))
}

// SubscribeBuffered subscribes to the Broker's broadcasts, and returns a
// subscription handle that can be used to receive broadcasts.
//
// Buffer controls the capacity of a ring buffer, when full the oldest
// undelivered broadcasts are dropped.
func (b *Broker) SubscribeBuffered(buffer int64) *Subscription {
	return b.SubscribeEx(buffer, nil)
}

// SubscribeEx subscribes to a broker with extended options, invoking the
// given hook (if any) with the subscription channel before any broadcast
// can be delivered to it.
func (b *Broker) SubscribeEx(buffer int64, onSubscribeHook OnSubscribeHook) *Subscription {
	var ch channels.Channel
	if buffer == int64(channels.Infinity) {
		ch = channels.NewInfiniteChannel()
	} else {
		ch = channels.NewRingChannel(channels.BufferCap(buffer))
	}

	b.Lock()
	defer b.Unlock()

	sub := &Subscription{
		b:     b,
		ch:    ch,
		index: b.nextIndex,
	}
	b.subscribers[sub.index] = sub
	b.nextIndex++

	if b.pubLastOnSub && b.hasLastElem {
		ch.In() <- b.lastElem
	}
	if b.onSubscribeHook != nil {
		b.onSubscribeHook(ch)
	}
	if onSubscribeHook != nil {
		onSubscribeHook(ch)
	}
	return sub
}

// Broadcast queues up a new value for distribution to every subscriber.
func (b *Broker) Broadcast(v interface{}) {
	b.Lock()
	defer b.Unlock()

	for _, sub := range b.subscribers {
		sub.ch.In() <- v
	}
	if b.pubLastOnSub {
		b.lastElem = v
		b.hasLastElem = true
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.Lock()
	defer b.Unlock()

	return len(b.subscribers)
}

// NewBroker creates a new pub/sub broker. If pubLastOnSubscribe is set,
// the last broadcast value is delivered to new subscribers.
func NewBroker(pubLastOnSubscribe bool) *Broker {
	return &Broker{
		subscribers:  make(map[uint64]*Subscription),
		pubLastOnSub: pubLastOnSubscribe,
	}
}

// NewBrokerEx creates a new pub/sub broker, with a hook that is called
// on every new subscription.
func NewBrokerEx(onSubscribeHook OnSubscribeHook) *Broker {
	b := NewBroker(false)
	b.onSubscribeHook = onSubscribeHook
	return b
}

type contextSubscription struct {
	cancel context.CancelFunc
}

func (s *contextSubscription) Close() {
	s.cancel()
}

// NewContextSubscription creates a subscription that cancels the returned
// context when closed.
func NewContextSubscription(parent context.Context) (context.Context, ClosableSubscription) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &contextSubscription{cancel}
}
