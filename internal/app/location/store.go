// Package location keeps the latest reported location of each device.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/19room/internal/domain/geo"
)

// Report is one location fix sent by a device.
type Report struct {
	DeviceID   string    `validate:"required"`
	Point      geo.Point
	ReportedAt time.Time
}

type fix struct {
	point geo.Point
	at    time.Time
}

// Store holds the latest fix per device. Fixes older than maxAge are ignored.
type Store struct {
	mu     sync.RWMutex
	fixes  map[string]fix
	maxAge time.Duration
	now    func() time.Time
	valid  *validator.Validate
}

// NewStore creates a store. maxAge <= 0 keeps fixes forever.
func NewStore(maxAge time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		fixes:  make(map[string]fix),
		maxAge: maxAge,
		now:    now,
		valid:  validator.New(),
	}
}

// Report records a fix. Fixes older than the stored one are dropped.
func (s *Store) Report(r Report) error {
	if err := s.valid.Struct(r); err != nil {
		return errors.Wrap(err, "invalid location report")
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.fixes[r.DeviceID]; ok && prev.at.After(r.ReportedAt) {
		return nil
	}
	s.fixes[r.DeviceID] = fix{point: r.Point, at: r.ReportedAt}
	return nil
}

// Latest returns the latest fix of a device.
func (s *Store) Latest(ctx context.Context, deviceID string) (geo.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fixes[deviceID]
	if !ok {
		return geo.Point{}, false
	}
	if s.maxAge > 0 && s.now().Sub(f.at) > s.maxAge {
		return geo.Point{}, false
	}
	return f.point, true
}

// Forget drops the fix of a device.
func (s *Store) Forget(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fixes, deviceID)
}
