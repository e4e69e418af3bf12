package site

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Render series names, one per page source format.
const (
	SeriesHTML     = "html"
	SeriesMarkdown = "markdown"
)

type renderEvent struct {
	at      time.Time
	series  string
	elapsed time.Duration
	page    PageResult
}

// Latency summarizes render times in milliseconds. Percentiles use the
// nearest-rank method, so every value is an observed sample.
type Latency struct {
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  int64   `json:"p50_ms"`
	P95Ms  int64   `json:"p95_ms"`
	P99Ms  int64   `json:"p99_ms"`
}

// SeriesStats aggregates the renders of one series inside the window.
type SeriesStats struct {
	Pages            int     `json:"pages"`
	Entries          int     `json:"entries"`
	MissingContainer int     `json:"missing_container"`
	ClientSide       int     `json:"client_side"`
	Latency          Latency `json:"latency"`
}

// StatsSnapshot is the window's view of page rendering, overall and per series.
type StatsSnapshot struct {
	Window string                 `json:"window"`
	Total  SeriesStats            `json:"total"`
	Series map[string]SeriesStats `json:"series"`
}

// RenderStats keeps the page renders of a rolling time window.
type RenderStats struct {
	mu     sync.Mutex
	window time.Duration
	events []renderEvent
	now    func() time.Time
}

func NewRenderStats(window time.Duration) *RenderStats {
	if window <= 0 {
		window = time.Hour
	}
	return &RenderStats{window: window, now: time.Now}
}

// Record adds one finished render to the window.
func (s *RenderStats) Record(series string, elapsed time.Duration, page PageResult) {
	if elapsed < 0 {
		elapsed = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)
	s.events = append(s.events, renderEvent{at: now, series: series, elapsed: elapsed, page: page})
}

// Snapshot aggregates the renders still inside the window.
func (s *RenderStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	events := slices.Clone(s.events)
	s.mu.Unlock()

	snap := StatsSnapshot{
		Window: s.window.String(),
		Series: make(map[string]SeriesStats),
	}
	bySeries := make(map[string][]renderEvent)
	for _, ev := range events {
		bySeries[ev.series] = append(bySeries[ev.series], ev)
	}
	for name, evs := range bySeries {
		snap.Series[name] = summarize(evs)
	}
	snap.Total = summarize(events)
	return snap
}

// expire drops events older than the window. Events are appended in time
// order, so the expired ones form a prefix.
func (s *RenderStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.events) && s.events[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.events = slices.Delete(s.events, 0, i)
	}
}

func summarize(evs []renderEvent) SeriesStats {
	var st SeriesStats
	if len(evs) == 0 {
		return st
	}
	ms := make([]int64, len(evs))
	var total int64
	for i, ev := range evs {
		st.Pages++
		st.Entries += ev.page.Appended
		if !ev.page.ContainerFound {
			st.MissingContainer++
		}
		if ev.page.ClientSide {
			st.ClientSide++
		}
		ms[i] = ev.elapsed.Milliseconds()
		total += ms[i]
	}
	slices.Sort(ms)
	st.Latency = Latency{
		MinMs:  ms[0],
		MaxMs:  ms[len(ms)-1],
		MeanMs: float64(total) / float64(len(ms)),
		P50Ms:  nearestRank(ms, 50),
		P95Ms:  nearestRank(ms, 95),
		P99Ms:  nearestRank(ms, 99),
	}
	return st
}

func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct / 100 * float64(len(sorted))))
	rank = max(1, min(rank, len(sorted)))
	return sorted[rank-1]
}
