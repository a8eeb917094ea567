// Package stat records per-phase timings and sizes of a conversion run.
package stat

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is safe for concurrent use. An interrupt cancels the run context
// and the CLI still prints the stats collected so far.
type Stats struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time

	parse, convert, solve, output, total time.Duration
	recorded                            map[string]bool

	ilaspCPU    time.Duration
	ilaspMemory uint64
	hasILASP    bool

	universeSize     int
	uniquePredicates int
	hasUniverse      bool
}

func New() *Stats {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Stats {
	return &Stats{now: now, last: now(), recorded: map[string]bool{}}
}

// lap returns the time since the previous checkpoint and starts a new one.
func (s *Stats) lap(name string) time.Duration {
	t := s.now()
	d := t.Sub(s.last)
	s.last = t
	s.recorded[name] = true
	return d
}

func (s *Stats) Parse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parse = s.lap("parse")
}

func (s *Stats) Convert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convert = s.lap("convert")
}

func (s *Stats) Output() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = s.lap("output")
}

// Solve records the time ILASP spent and restarts the phase clock.
func (s *Stats) Solve(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solve = d
	s.recorded["solve"] = true
	s.last = s.now()
}

// Finish sums the recorded phases into the total.
func (s *Stats) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = s.parse + s.convert + s.solve + s.output
	s.recorded["total"] = true
}

func (s *Stats) RecordILASP(cpu time.Duration, memory uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ilaspCPU = cpu
	s.ilaspMemory = memory
	s.hasILASP = true
}

func (s *Stats) RecordUniverse(size, uniquePredicates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universeSize = size
	s.uniquePredicates = uniquePredicates
	s.hasUniverse = true
}

func (s *Stats) UniverseSize() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.universeSize, s.hasUniverse
}

func (s *Stats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	phases := []struct {
		key, title string
		d          time.Duration
	}{
		{"parse", "Parse time", s.parse},
		{"convert", "Convert time", s.convert},
		{"solve", "Solve time", s.solve},
		{"output", "Output time", s.output},
		{"total", "Total time", s.total},
	}
	for _, p := range phases {
		if s.recorded[p.key] {
			fmt.Fprintf(&sb, "%s: %s\n", p.title, p.d)
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(&sb, "Memory: %s\n", humanize.Bytes(mem.Sys))

	if s.hasILASP {
		fmt.Fprintf(&sb, "ILASP CPU time: %s\n", s.ilaspCPU)
		fmt.Fprintf(&sb, "ILASP Memory: %s\n", humanize.Bytes(s.ilaspMemory))
	} else {
		sb.WriteString("ILASP Memory: Not available\n")
	}
	if s.hasUniverse {
		fmt.Fprintf(&sb, "Universe Size: %s literals\n", humanize.Comma(int64(s.universeSize)))
		fmt.Fprintf(&sb, "Unique Predicates: %d\n", s.uniquePredicates)
	} else {
		sb.WriteString("Universe Size: Not available\n")
		sb.WriteString("Unique Predicates: Not available\n")
	}
	return sb.String()
}
