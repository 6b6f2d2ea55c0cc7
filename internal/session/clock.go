package session

import (
	"context"
	"time"
)

// Clock paces demo playback.
type Clock interface {
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on wall-clock time.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pacing holds the observation delays between demo steps.
type Pacing struct {
	Setup    time.Duration
	Classify time.Duration
	Collect  time.Duration
	Analyze  time.Duration
	Dwell    time.Duration
}

// DefaultPacing returns the presentation delays at normal speed.
func DefaultPacing() Pacing {
	return Pacing{
		Setup:    800 * time.Millisecond,
		Classify: 600 * time.Millisecond,
		Collect:  800 * time.Millisecond,
		Analyze:  1000 * time.Millisecond,
		Dwell:    4000 * time.Millisecond,
	}
}

// Scaled divides every delay by speed. Non-positive speeds leave p unchanged.
func (p Pacing) Scaled(speed float64) Pacing {
	if speed <= 0 || speed == 1 {
		return p
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / speed)
	}
	return Pacing{
		Setup:    scale(p.Setup),
		Classify: scale(p.Classify),
		Collect:  scale(p.Collect),
		Analyze:  scale(p.Analyze),
		Dwell:    scale(p.Dwell),
	}
}
