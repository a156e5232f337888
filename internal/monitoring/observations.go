package monitoring

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/fogcast/internal/game/events"
)

// durationWindow is how many recent observation durations feed the spread statistics
const durationWindow = 1024

// ObservationMonitor tracks how often and how quickly observers see the world.
// It subscribes to an event bus and can periodically log what it has gathered.
type ObservationMonitor struct {
	mu             sync.RWMutex
	ticks          uint64
	observations   uint64
	discovered     int
	totalDuration  time.Duration
	peakDuration   time.Duration
	peakVisible    int
	recent         []float64 // nanoseconds, ring of durationWindow entries
	recentNext     int
	perObserver    map[string]int
	reportInterval time.Duration
	slowThreshold  time.Duration
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	logger         zerolog.Logger
}

var _ events.Subscriber = (*ObservationMonitor)(nil)

// NewObservationMonitor creates a new observation monitor
func NewObservationMonitor(logger zerolog.Logger) *ObservationMonitor {
	return &ObservationMonitor{
		perObserver:    make(map[string]int),
		reportInterval: 30 * time.Second,
		slowThreshold:  50 * time.Millisecond,
		alertCooldown:  time.Minute,
		stopChan:       make(chan struct{}),
		logger:         logger.With().Str("component", "observation_monitor").Logger(),
	}
}

// SetSlowThreshold changes the duration above which an observation is reported as slow
func (om *ObservationMonitor) SetSlowThreshold(d time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()
	om.slowThreshold = d
}

// ID returns the subscriber's unique identifier
func (om *ObservationMonitor) ID() string { return "observation-monitor" }

// InterestedIn returns true for the events the monitor aggregates
func (om *ObservationMonitor) InterestedIn(eventType string) bool {
	switch eventType {
	case events.TypeObservationCompleted, events.TypeCellsDiscovered, events.TypeTickCompleted:
		return true
	}
	return false
}

// HandleEvent folds an event into the gathered metrics
func (om *ObservationMonitor) HandleEvent(event events.Event) {
	switch e := event.(type) {
	case *events.ObservationCompletedEvent:
		om.recordObservation(e)
	case *events.CellsDiscoveredEvent:
		om.mu.Lock()
		om.discovered += len(e.Cells)
		om.mu.Unlock()
	case *events.TickCompletedEvent:
		om.mu.Lock()
		om.ticks++
		om.mu.Unlock()
	}
}

func (om *ObservationMonitor) recordObservation(e *events.ObservationCompletedEvent) {
	om.mu.Lock()
	om.observations++
	om.perObserver[e.ObserverID]++
	om.totalDuration += e.Duration
	if e.Duration > om.peakDuration {
		om.peakDuration = e.Duration
	}
	if len(om.recent) < durationWindow {
		om.recent = append(om.recent, float64(e.Duration))
	} else {
		om.recent[om.recentNext] = float64(e.Duration)
		om.recentNext = (om.recentNext + 1) % durationWindow
	}
	if e.VisibleCells > om.peakVisible {
		om.peakVisible = e.VisibleCells
	}

	shouldAlert := e.Duration > om.slowThreshold &&
		time.Since(om.lastAlert) > om.alertCooldown
	if shouldAlert {
		om.lastAlert = time.Now()
	}
	threshold := om.slowThreshold
	om.mu.Unlock()

	if shouldAlert {
		om.logger.Warn().
			Str("observer_id", e.ObserverID).
			Uint64("step", e.Step).
			Dur("duration", e.Duration).
			Dur("threshold", threshold).
			Int("visible", e.VisibleCells).
			Msg("Slow observation detected")
	}
}

// Start begins periodic metric reports
func (om *ObservationMonitor) Start(interval time.Duration) {
	if interval > 0 {
		om.reportInterval = interval
	}
	go om.monitor()
	om.logger.Info().
		Dur("interval", om.reportInterval).
		Msg("Started observation monitoring")
}

// Stop stops the periodic reports
func (om *ObservationMonitor) Stop() {
	close(om.stopChan)
}

func (om *ObservationMonitor) monitor() {
	ticker := time.NewTicker(om.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			om.Report()
		case <-om.stopChan:
			return
		}
	}
}

// Report logs the current metrics
func (om *ObservationMonitor) Report() {
	m := om.GetMetrics()
	om.logger.Info().
		Uint64("ticks", m.Ticks).
		Uint64("observations", m.Observations).
		Int("discovered", m.Discovered).
		Dur("mean_duration", m.MeanDuration).
		Dur("peak_duration", m.PeakDuration).
		Dur("p95_duration", m.P95Duration).
		Dur("stddev_duration", m.StdDevDuration).
		Int("peak_visible", m.PeakVisible).
		Msg("Observation metrics")
}

// GetMetrics returns a snapshot of the gathered metrics
func (om *ObservationMonitor) GetMetrics() ObservationMetrics {
	om.mu.RLock()
	defer om.mu.RUnlock()

	var mean, p95, stddev time.Duration
	if om.observations > 0 {
		mean = om.totalDuration / time.Duration(om.observations)
	}
	if len(om.recent) > 0 {
		sorted := slices.Clone(om.recent)
		slices.Sort(sorted)
		p95 = time.Duration(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	}
	if len(om.recent) > 1 {
		stddev = time.Duration(stat.StdDev(om.recent, nil))
	}
	return ObservationMetrics{
		Ticks:          om.ticks,
		Observations:   om.observations,
		Discovered:     om.discovered,
		MeanDuration:   mean,
		PeakDuration:   om.peakDuration,
		P95Duration:    p95,
		StdDevDuration: stddev,
		PeakVisible:    om.peakVisible,
		PerObserver:    maps.Clone(om.perObserver),
	}
}

// ObservationMetrics contains observation statistics
type ObservationMetrics struct {
	Ticks          uint64         `json:"ticks"`
	Observations   uint64         `json:"observations"`
	Discovered     int            `json:"discovered"`
	MeanDuration   time.Duration  `json:"mean_duration"`
	PeakDuration   time.Duration  `json:"peak_duration"`
	P95Duration    time.Duration  `json:"p95_duration"`
	StdDevDuration time.Duration  `json:"stddev_duration"`
	PeakVisible    int            `json:"peak_visible"`
	PerObserver    map[string]int `json:"per_observer"`
}
