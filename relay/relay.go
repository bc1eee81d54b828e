// Package relay bridges a long-lived upstream event stream to the browser as
// Server-Sent Events. It is a pure relay: bytes are re-encoded chunk by
// chunk, in arrival order, with no buffering beyond the current chunk and no
// persistence.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/complyward/console-gateway/internal/errors"
)

// Relay owns the state of one browser connection: the closed flag and the
// decoder. Exactly one reader loop runs per connection; nothing else touches
// this state, but the closed flag is atomic because cancellation may arrive
// from either side of the bridge.
type Relay struct {
	closed atomic.Bool
	dec    Decoder
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Relay {
	return &Relay{log: log}
}

// Close marks the relay closed. Idempotent: returns true only for the call
// that performed the transition.
func (r *Relay) Close() bool {
	return r.closed.CompareAndSwap(false, true)
}

// Closed reports whether the relay has been cancelled from either side.
func (r *Relay) Closed() bool {
	return r.closed.Load()
}

// Run pumps the upstream event-stream response into w until the upstream
// completes, the context is cancelled, or the browser goes away. The
// upstream body is always released on exit, errors from that release are
// ignored. flush is called after every write so no chunk sits in a buffer.
func (r *Relay) Run(ctx context.Context, upstream *http.Response, w io.Writer, flush func()) error {
	defer func() {
		r.Close()
		if upstream.Body != nil {
			_ = upstream.Body.Close()
		}
	}()

	if upstream.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrUpstreamRejected, "notification stream returned %d", upstream.StatusCode)
	}
	if upstream.Body == nil {
		return errors.ErrUpstreamNoBody
	}

	buf := make([]byte, 4096)
	for {
		if r.Closed() {
			return nil
		}

		n, err := upstream.Body.Read(buf)
		if n > 0 {
			if werr := r.emit(w, flush, r.dec.Decode(buf[:n])); werr != nil {
				// Browser side is gone; nothing left to report to.
				r.log.Debug().Err(werr).Msg("notification relay: browser write failed")
				return nil
			}
		}
		if err != nil {
			if tail := r.dec.Flush(); tail != "" {
				_ = r.emit(w, flush, tail)
			}
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}
			return errors.Wrapf(errors.ErrUpstreamUnreachable, "reading notification stream (%v)", err)
		}
	}
}

// emit writes decoded text to the browser unless the relay closed in the
// meantime. A write to a closed connection is swallowed, not propagated.
func (r *Relay) emit(w io.Writer, flush func(), text string) error {
	if text == "" || r.Closed() {
		return nil
	}
	if _, err := io.WriteString(w, text); err != nil {
		r.Close()
		return err
	}
	flush()
	return nil
}

// WriteStreamError surfaces a single terminal error event on an SSE stream.
func WriteStreamError(w io.Writer, flush func(), message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	_, _ = fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
	flush()
}
