package monthkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{
			name: "utc time",
			at:   time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
			want: "2026-03",
		},
		{
			name: "month boundary resolves in utc",
			at:   time.Date(2026, time.April, 1, 1, 30, 0, 0, time.FixedZone("UTC+3", 3*3600)),
			want: "2026-03",
		},
		{
			name: "negative offset crosses into next month",
			at:   time.Date(2026, time.March, 31, 23, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: "2026-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, At(tt.at))
		})
	}
}

func TestCurrent(t *testing.T) {
	assert.Equal(t, At(time.Now()), Current())
}
