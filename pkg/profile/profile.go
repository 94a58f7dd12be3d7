// Package profile aggregates many past sessions into a per-user profile:
// preferred names, location, work info, fill hour, and device. The profile
// is a derived snapshot recomputed wholesale on each aggregation; callers
// wanting decayed or weighted long-term profiles compose that externally.
package profile

import (
	"strings"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/form"
)

// Session is one historical submission plus the ambient signals captured
// with it.
type Session struct {
	Record form.SubmissionRecord
	Hour   int    // 0-23, local fill hour
	Device string // device class label
}

// Profile is the aggregated snapshot.
type Profile struct {
	PreferredNames    []string `json:"preferredNames,omitempty"`
	PreferredLocation string   `json:"preferredLocation,omitempty"`
	PreferredWorkInfo string   `json:"preferredWorkInfo,omitempty"`
	PreferredHour     int      `json:"preferredHour"`
	PreferredDevice   string   `json:"preferredDevice,omitempty"`
}

// Aggregate recomputes the profile from scratch over the sessions. Each
// preference is computed independently; ties break toward the first-seen
// candidate (strict > while scanning in observation order).
func Aggregate(sessions []Session) Profile {
	names := newCounter[string]()
	locations := newCounter[string]()
	work := newCounter[string]()
	hours := newCounter[int]()
	devices := newCounter[string]()

	for _, session := range sessions {
		first := strings.TrimSpace(session.Record["first_name"])
		last := strings.TrimSpace(session.Record["last_name"])
		if first != "" && last != "" {
			names.add(first + " " + last)
		}

		city := strings.TrimSpace(session.Record["city"])
		state := strings.TrimSpace(session.Record["state"])
		if city != "" && state != "" {
			locations.add(city + "-" + state)
		}

		company := strings.TrimSpace(session.Record["company"])
		title := strings.TrimSpace(session.Record["title"])
		if company != "" && title != "" {
			work.add(company + "-" + title)
		}

		if session.Hour >= 0 && session.Hour <= 23 {
			hours.add(session.Hour)
		}
		if session.Device != "" {
			devices.add(session.Device)
		}
	}

	return Profile{
		PreferredNames:    names.distinct(),
		PreferredLocation: locations.mostFrequent(),
		PreferredWorkInfo: work.mostFrequent(),
		PreferredHour:     hours.mostFrequent(),
		PreferredDevice:   devices.mostFrequent(),
	}
}

// Merge overlays update onto base by shallow property overwrite: non-zero
// fields of update win, everything else keeps the base value. There is no
// numeric accumulation here.
func Merge(base, update Profile) Profile {
	merged := base
	if len(update.PreferredNames) > 0 {
		merged.PreferredNames = update.PreferredNames
	}
	if update.PreferredLocation != "" {
		merged.PreferredLocation = update.PreferredLocation
	}
	if update.PreferredWorkInfo != "" {
		merged.PreferredWorkInfo = update.PreferredWorkInfo
	}
	if update.PreferredHour != 0 {
		merged.PreferredHour = update.PreferredHour
	}
	if update.PreferredDevice != "" {
		merged.PreferredDevice = update.PreferredDevice
	}
	return merged
}

// counter tracks frequencies while remembering first-seen order so ties
// resolve deterministically.
type counter[K comparable] struct {
	counts map[K]int
	order  []K
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) add(key K) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// mostFrequent scans candidates in insertion order with strict >, so the
// first-seen candidate wins ties.
func (c *counter[K]) mostFrequent() K {
	var best K
	bestCount := 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best = key
			bestCount = c.counts[key]
		}
	}
	return best
}

func (c *counter[K]) distinct() []K {
	if len(c.order) == 0 {
		return nil
	}
	return append([]K(nil), c.order...)
}
