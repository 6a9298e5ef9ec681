// Package freshness maps time since a reporter's last update onto a health
// class. Every consumer (TUI colouring, API status, summary counts) goes
// through Classify so all views agree.
package freshness

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Class is the closed set of freshness classifications.
type Class int

const (
	Recent Class = iota
	Normal
	Stale
)

// Upper bounds, inclusive, in whole seconds.
const (
	RecentMax = 4
	NormalMax = 30
)

// Classify returns the class for a reporter last heard from secs seconds ago.
// Negative input (receipt clock ahead of now) counts as Recent.
func Classify(secs int64) Class {
	switch {
	case secs <= RecentMax:
		return Recent
	case secs <= NormalMax:
		return Normal
	default:
		return Stale
	}
}

// Since returns whole seconds elapsed from last to now, saturating at zero.
func Since(now, last time.Time) int64 {
	d := now.Unix() - last.Unix()
	if d < 0 {
		return 0
	}
	return d
}

func (c Class) String() string {
	switch c {
	case Recent:
		return "recent"
	case Normal:
		return "normal"
	default:
		return "stale"
	}
}

// MarshalJSON encodes the class as its lowercase name.
func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Classes lists every class in display order.
func Classes() []Class { return []Class{Recent, Normal, Stale} }

// Parse returns the class named s, case-insensitively.
func Parse(s string) (Class, error) {
	for _, c := range Classes() {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown freshness class %q: want recent|normal|stale", s)
}
