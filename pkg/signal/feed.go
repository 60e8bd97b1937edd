package signal

import (
	"strings"
	"sync"
)

// Key identifies the trend line list of one chart
type Key struct {
	Code   string
	Period string
}

// NewKey builds a key with the code upper-cased, as storage does
func NewKey(code, period string) Key {
	return Key{Code: strings.ToUpper(strings.TrimSpace(code)), Period: strings.TrimSpace(period)}
}

func (k Key) String() string {
	return k.Code + "|" + k.Period
}

// Refresh tells that the lines of Key changed; Seq only grows
type Refresh struct {
	Key Key
	Seq uint64
}

// Consumer is a function type that processes refresh events
type Consumer func(Refresh)

// Feed is the refresh signal: a monotonic counter per key plus the
// subscribers that are told every time it is bumped
type Feed struct {
	mu            sync.RWMutex
	wg            sync.WaitGroup
	started       bool
	seqs          map[Key]uint64
	feeds         map[Key]chan Refresh
	subscriptions map[Key][]Consumer
}

// NewFeed creates a new refresh feed
func NewFeed() *Feed {
	return &Feed{
		seqs:          make(map[Key]uint64),
		feeds:         make(map[Key]chan Refresh),
		subscriptions: make(map[Key][]Consumer),
	}
}

// Subscribe registers a consumer for the refreshes of key
func (f *Feed) Subscribe(key Key, consumer Consumer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.feeds[key]; !ok {
		feed := make(chan Refresh, 100)
		f.feeds[key] = feed
		if f.started {
			f.run(key, feed)
		}
	}

	f.subscriptions[key] = append(f.subscriptions[key], consumer)
}

// Publish bumps the counter of key and returns the new value. Subscribers
// that are not keeping up miss intermediate values, never the counter.
func (f *Feed) Publish(key Key) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seqs[key]++
	seq := f.seqs[key]

	if feed, ok := f.feeds[key]; ok {
		select {
		case feed <- Refresh{Key: key, Seq: seq}:
		default:
		}
	}

	return seq
}

// Seq returns the current counter of key, 0 before the first publish
func (f *Feed) Seq(key Key) uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seqs[key]
}

// Start begins dispatching refreshes to subscribers
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return
	}
	f.started = true

	for key, feed := range f.feeds {
		f.run(key, feed)
	}
}

func (f *Feed) run(key Key, feed chan Refresh) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for refresh := range feed {
			f.mu.RLock()
			subscriptions := f.subscriptions[key]
			f.mu.RUnlock()

			for _, consumer := range subscriptions {
				consumer(refresh)
			}
		}
	}()
}

// Stop closes all feeds and waits for pending dispatches. Counters survive.
func (f *Feed) Stop() {
	f.mu.Lock()
	for key, feed := range f.feeds {
		close(feed)
		delete(f.feeds, key)
	}
	f.subscriptions = make(map[Key][]Consumer)
	f.started = false
	f.mu.Unlock()

	f.wg.Wait()
}
