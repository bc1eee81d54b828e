package config

import (
	"strconv"
	"time"
)

type UpstreamConfig interface {
	GetUpstreamBaseURL() string
	GetUpstreamTimeout() time.Duration
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

func (Upstream) GetUpstreamBaseURL() string {
	return GetEnv(upstreamVar, "http://localhost:9000")
}

// GetUpstreamTimeout bounds request/response round trips to the upstream.
// The notification stream bypasses this timeout, it is cancelled by the
// browser connection instead.
func (Upstream) GetUpstreamTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("UPSTREAM_TIMEOUT_SECONDS", "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
