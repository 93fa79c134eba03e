package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "morning bucket",
			now:  time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "evening bucket",
			now:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "just before noon",
			now:  time.Date(2026, 3, 1, 11, 59, 59, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "end of day",
			now:  time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input buckets by UTC wall clock",
			now:  time.Date(2026, 3, 1, 16, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentPeriodStart(tt.now))
		})
	}
}
