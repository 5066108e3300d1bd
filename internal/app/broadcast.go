package app

import (
	"sync"

	"quiz-rewards-service/internal/domain"
)

// LeaderboardBroadcaster fans leaderboard snapshots out to websocket
// subscribers. Subscribers get the latest snapshot on subscribe and every
// update afterwards; slow consumers have stale frames dropped rather than
// blocking the broadcast.
type LeaderboardBroadcaster struct {
	mu          sync.Mutex
	latest      domain.LeaderboardPage
	hasSnapshot bool
	subscribers map[chan domain.LeaderboardPage]struct{}
}

func NewLeaderboardBroadcaster() *LeaderboardBroadcaster {
	return &LeaderboardBroadcaster{
		subscribers: make(map[chan domain.LeaderboardPage]struct{}),
	}
}

// Subscribe returns a channel of leaderboard snapshots and a cancel func.
// The caller must invoke cancel to avoid leaks.
func (b *LeaderboardBroadcaster) Subscribe() (<-chan domain.LeaderboardPage, func()) {
	ch := make(chan domain.LeaderboardPage, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	if b.hasSnapshot {
		ch <- b.latest
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish stores the snapshot and pushes it to every subscriber.
func (b *LeaderboardBroadcaster) Publish(page domain.LeaderboardPage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = page
	b.hasSnapshot = true
	for ch := range b.subscribers {
		select {
		case ch <- page:
		default:
			// Drop the stale frame so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- page
		}
	}
}
