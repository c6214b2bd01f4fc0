// Package store holds the latest derived value of each dashboard view. One
// slot per derived record type; a slot is written only by its own view's
// refresh cycle and read by the presentation layer.
package store

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/citypulse/traffic-dashboard/internal/domain"
)

// Status describes what a slot currently holds. Loading means no refresh
// cycle has completed yet; NoData means the last cycle completed with zero
// rows, which is explicitly distinct from loading.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusNoData  Status = "no_data"
)

// Snapshot is a read-only copy of a slot's current state.
type Snapshot[T any] struct {
	Data      T         `json:"data"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Slot holds the current value of one derived record type. Publish replaces
// the value wholesale; there is no incremental merge.
type Slot[T any] struct {
	clock clockwork.Clock

	mu        sync.RWMutex
	value     T
	status    Status
	updatedAt time.Time
}

// NewSlot creates a slot in the loading state.
func NewSlot[T any](clock clockwork.Clock) *Slot[T] {
	return &Slot[T]{clock: clock, status: StatusLoading}
}

// Publish replaces the slot's value and marks it ready.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.status = StatusReady
	s.updatedAt = s.clock.Now()
}

// PublishEmpty records a completed cycle that produced no rows. The previous
// value is cleared so consumers render an explicit no-data state.
func (s *Slot[T]) PublishEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.status = StatusNoData
	s.updatedAt = s.clock.Now()
}

// Get returns the current snapshot.
func (s *Slot[T]) Get() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{Data: s.value, Status: s.status, UpdatedAt: s.updatedAt}
}

// Store aggregates the slots for every dashboard view.
type Store struct {
	Trends        *Slot[domain.TrendMatrix]
	CityHealth    *Slot[domain.CitySummary]
	TopCongestion *Slot[[]domain.RankedCongestionItem]
	Efficiency    *Slot[[]domain.EfficiencyRecord]
	Anomalies     *Slot[[]domain.AnomalyRecord]
	Forecast      *Slot[[]domain.ForecastRecord]
	GreenRoutes   *Slot[[]domain.TrafficSample]
	Volatility    *Slot[[]domain.VolatilityRecord]
	Peak          *Slot[[]domain.PeakRow]
	Weekday       *Slot[[]domain.WeekdayRow]
	Heatmap       *Slot[domain.HeatField]
}

// New creates a Store with every slot in the loading state.
func New(clock clockwork.Clock) *Store {
	return &Store{
		Trends:        NewSlot[domain.TrendMatrix](clock),
		CityHealth:    NewSlot[domain.CitySummary](clock),
		TopCongestion: NewSlot[[]domain.RankedCongestionItem](clock),
		Efficiency:    NewSlot[[]domain.EfficiencyRecord](clock),
		Anomalies:     NewSlot[[]domain.AnomalyRecord](clock),
		Forecast:      NewSlot[[]domain.ForecastRecord](clock),
		GreenRoutes:   NewSlot[[]domain.TrafficSample](clock),
		Volatility:    NewSlot[[]domain.VolatilityRecord](clock),
		Peak:          NewSlot[[]domain.PeakRow](clock),
		Weekday:       NewSlot[[]domain.WeekdayRow](clock),
		Heatmap:       NewSlot[domain.HeatField](clock),
	}
}

// Ready reports whether at least one slot has left the loading state, i.e.
// at least one refresh cycle has completed.
func (s *Store) Ready() bool {
	for _, status := range []Status{
		s.Trends.Get().Status,
		s.CityHealth.Get().Status,
		s.TopCongestion.Get().Status,
		s.Efficiency.Get().Status,
		s.Anomalies.Get().Status,
		s.Forecast.Get().Status,
		s.GreenRoutes.Get().Status,
		s.Volatility.Get().Status,
		s.Peak.Get().Status,
		s.Weekday.Get().Status,
		s.Heatmap.Get().Status,
	} {
		if status != StatusLoading {
			return true
		}
	}
	return false
}
