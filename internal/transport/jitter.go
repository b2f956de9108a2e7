package transport

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// Profile names a jitter configuration.
type Profile string

const (
	ProfileNone       Profile = "none"
	ProfileGentle     Profile = "gentle"
	ProfileNormal     Profile = "normal"
	ProfileAggressive Profile = "aggressive"
)

// Profiles lists the accepted profile names.
var Profiles = []Profile{ProfileNone, ProfileGentle, ProfileNormal, ProfileAggressive}

// ValidProfile reports whether name is one of Profiles.
func ValidProfile(name string) bool {
	return slices.Contains(Profiles, Profile(name))
}

// Jitter waits a random duration before each request.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// NewJitter returns the jitter for profile. ProfileNone yields nil.
func NewJitter(profile Profile) (*Jitter, error) {
	switch profile {
	case ProfileNone:
		return nil, nil
	case ProfileGentle:
		return &Jitter{Min: time.Second, Max: 3 * time.Second}, nil
	case ProfileNormal, "":
		return &Jitter{Min: 100 * time.Millisecond, Max: 500 * time.Millisecond}, nil
	case ProfileAggressive:
		return &Jitter{Min: 0, Max: 100 * time.Millisecond}, nil
	default:
		return nil, fmt.Errorf("unknown delay profile %q", profile)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next delay.
func (j *Jitter) Next() time.Duration {
	if j.Min >= j.Max {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)))
}
