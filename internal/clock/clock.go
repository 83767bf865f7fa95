// Package clock abstracts time so batch runs can share one frozen reading
// and tests can pin it.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed(t) }
