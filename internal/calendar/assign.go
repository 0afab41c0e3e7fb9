package calendar

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// PinSet maps day-number strings ("5") to persistent IDs. String keys match
// the on-disk pins file so the set round-trips through JSON unchanged.
type PinSet map[string]string

// Clone returns a copy of the pin set.
func (p PinSet) Clone() PinSet {
	out := make(PinSet, len(p))
	for day, pid := range p {
		out[day] = pid
	}
	return out
}

// Days returns the pinned day numbers in ascending order. Keys that do not
// parse as positive integers are skipped.
func (p PinSet) Days() []int {
	days := make([]int, 0, len(p))
	for key := range p {
		if n, err := strconv.Atoi(key); err == nil && n >= 1 {
			days = append(days, n)
		}
	}
	sort.Ints(days)
	return days
}

// NewRand returns a time-seeded source for callers that do not care about
// reproducibility. Assignment itself never seeds; the source is injected.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Assign redistributes song payloads across the mapping's days: pinned
// payloads land on their pinned day, every other payload is placed by a
// uniform shuffle of the remainder. The result holds exactly the same
// payload set as the input — a permutation, never a loss or duplication.
//
// Pins that cannot be honored (day outside the mapping, PID not present,
// or a PID pinned twice) are dropped with a warning rather than failing
// the whole run.
func Assign(m Mapping, pins PinSet, rng *rand.Rand) (Mapping, []string) {
	byPID := make(map[string]Payload, len(m))
	for _, day := range m.Days() {
		entry := m[DayKey(day)]
		if entry.PID != "" {
			byPID[entry.PID] = entry.Payload()
		}
	}

	var warnings []string
	pinnedByDay := make(map[int]Payload)
	pinnedPIDs := make(map[string]bool)
	for _, day := range pins.Days() {
		pid := pins[strconv.Itoa(day)]
		if _, ok := m[DayKey(day)]; !ok {
			warnings = append(warnings, fmt.Sprintf("pin for day %d ignored: day not in calendar", day))
			continue
		}
		payload, ok := byPID[pid]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("pin for day %d ignored: no song with PID %s", day, pid))
			continue
		}
		if pinnedPIDs[pid] {
			warnings = append(warnings, fmt.Sprintf("pin for day %d ignored: PID %s already pinned", day, pid))
			continue
		}
		pinnedByDay[day] = payload
		pinnedPIDs[pid] = true
	}

	// Base order is day order, so identical seeds give identical results.
	var unpinned []Payload
	for _, day := range m.Days() {
		entry := m[DayKey(day)]
		if !pinnedPIDs[entry.PID] {
			unpinned = append(unpinned, entry.Payload())
		}
	}
	rng.Shuffle(len(unpinned), func(i, j int) {
		unpinned[i], unpinned[j] = unpinned[j], unpinned[i]
	})

	out := make(Mapping, len(m))
	next := 0
	for _, day := range m.Days() {
		entry := m[DayKey(day)]
		if payload, ok := pinnedByDay[day]; ok {
			entry = entry.WithPayload(payload)
		} else {
			entry = entry.WithPayload(unpinned[next])
			next++
		}
		out[DayKey(day)] = entry
	}
	return out, warnings
}
