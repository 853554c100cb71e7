package filter

import (
	"context"
	"time"

	"github.com/osa030/19room/internal/domain/track"
)

// TimeWindowFilter rejects votes outside the room's time constraint.
type TimeWindowFilter struct {
	now func() time.Time
}

// NewTimeWindowFilter creates a new TimeWindowFilter.
func NewTimeWindowFilter(now func() time.Time) *TimeWindowFilter {
	if now == nil {
		now = time.Now
	}
	return &TimeWindowFilter{now: now}
}

func (f *TimeWindowFilter) Name() string {
	return "time_window_filter"
}

func (f *TimeWindowFilter) Description() string {
	return "Rejects votes cast outside the room's time window"
}

func (f *TimeWindowFilter) ReturnCodes() []string {
	return []string{CodeOutsideTimeWindow}
}

func (f *TimeWindowFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *TimeWindowFilter) AppliesTo(kind Kind) bool {
	return kind == KindVote
}

func (f *TimeWindowFilter) Check(ctx context.Context, req Request, t track.Track) Result {
	if !f.Open(req) {
		return Reject(CodeOutsideTimeWindow)
	}
	return Accept()
}

// Open reports whether the room has no window or the current time lies inside it.
func (f *TimeWindowFilter) Open(req Request) bool {
	w := req.Settings.TimeConstraint
	if w == nil {
		return true
	}
	return w.Contains(f.now())
}
