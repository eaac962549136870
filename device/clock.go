package device

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// Clock stamps readings.
type Clock interface {
	Now() time.Time
}

// SystemClock is the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// NTPClock is the local clock corrected by the offset measured against an
// NTP server when the clock was created.
type NTPClock struct {
	Server string
	Offset time.Duration
}

func NewNTPClock(server string) (*NTPClock, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return nil, fmt.Errorf("while querying NTP server %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid response from NTP server %s: %w", server, err)
	}
	return &NTPClock{Server: server, Offset: resp.ClockOffset}, nil
}

func (c *NTPClock) Now() time.Time {
	return time.Now().Add(c.Offset)
}
