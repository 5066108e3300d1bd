package app_test

import (
	"testing"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/domain"
)

func TestBroadcasterDeliversLatestSnapshot(t *testing.T) {
	b := app.NewLeaderboardBroadcaster()

	b.Publish(domain.LeaderboardPage{TotalCount: 1})

	ch, cancel := b.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.TotalCount != 1 {
		t.Fatalf("expected stored snapshot on subscribe, got %+v", initial)
	}

	b.Publish(domain.LeaderboardPage{TotalCount: 2})
	update := <-ch
	if update.TotalCount != 2 {
		t.Fatalf("expected update, got %+v", update)
	}
}

func TestBroadcasterDropsStaleFramesForSlowClients(t *testing.T) {
	b := app.NewLeaderboardBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Overflow the buffer without reading; publish must never block.
	for i := 1; i <= 20; i++ {
		b.Publish(domain.LeaderboardPage{TotalCount: i})
	}

	var last domain.LeaderboardPage
	for {
		select {
		case page := <-ch:
			last = page
			continue
		default:
		}
		break
	}
	if last.TotalCount != 20 {
		t.Fatalf("expected latest frame 20 to survive, got %d", last.TotalCount)
	}
}

func TestBroadcasterCancelIsIdempotent(t *testing.T) {
	b := app.NewLeaderboardBroadcaster()
	_, cancel := b.Subscribe()
	cancel()
	cancel() // second cancel must not panic on a closed channel

	b.Publish(domain.LeaderboardPage{TotalCount: 1})
}
