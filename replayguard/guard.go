// Package replayguard makes refresh-token single-use explicit at the
// gateway boundary. The gateway cannot verify whether the upstream enforces
// rotation, so it assumes it does not: a refresh token seen once is refused
// on any further use inside the window. Only SHA-256 fingerprints are
// retained, never raw token values.
package replayguard

import (
	"crypto/sha256"
	"sync"
	"time"
)

// Guard is an in-memory, per-process record of recently consumed refresh
// tokens. It is thread-safe and cleans itself up on a background ticker.
type Guard struct {
	mu     sync.Mutex
	seen   map[[sha256.Size]byte]time.Time
	window time.Duration

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// New creates a guard that refuses reuse of a token within window and starts
// the background cleanup goroutine.
func New(window time.Duration) *Guard {
	g := &Guard{
		seen:          make(map[[sha256.Size]byte]time.Time),
		window:        window,
		cleanupTicker: time.NewTicker(1 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}
	go g.cleanupLoop()
	return g
}

// Stop terminates the cleanup goroutine. Call on shutdown.
func (g *Guard) Stop() {
	g.cleanupTicker.Stop()
	close(g.stopCleanup)
}

// Consume records the token as used. Returns false when the token was
// already consumed inside the window; the caller must then reject the
// request without contacting the upstream.
func (g *Guard) Consume(token string) bool {
	fingerprint := sha256.Sum256([]byte(token))
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if used, ok := g.seen[fingerprint]; ok && now.Sub(used) < g.window {
		return false
	}
	g.seen[fingerprint] = now
	return true
}

func (g *Guard) cleanupLoop() {
	for {
		select {
		case <-g.cleanupTicker.C:
			g.cleanup()
		case <-g.stopCleanup:
			return
		}
	}
}

func (g *Guard) cleanup() {
	cutoff := time.Now().Add(-g.window)
	g.mu.Lock()
	defer g.mu.Unlock()
	for fingerprint, used := range g.seen {
		if used.Before(cutoff) {
			delete(g.seen, fingerprint)
		}
	}
}
