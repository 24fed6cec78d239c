package pipeline

import (
	"testing"
	"time"

	"trendpulse/internal/config"
)

func TestSnapshotID(t *testing.T) {
	// 2026-08-26 01:30 UTC is 10:30 KST the same day.
	now := time.Date(2026, 8, 26, 1, 30, 0, 0, time.UTC)
	if got := SnapshotID(now); got != "20260826_1030_KST" {
		t.Errorf("SnapshotID = %q, want 20260826_1030_KST", got)
	}

	// 2026-08-26 16:00 UTC crosses into the next KST day.
	now = time.Date(2026, 8, 26, 16, 0, 0, 0, time.UTC)
	if got := SnapshotID(now); got != "20260827_0100_KST" {
		t.Errorf("SnapshotID = %q, want 20260827_0100_KST", got)
	}
}

func TestNextUpdateAt(t *testing.T) {
	slots := []config.ScheduleSlot{{Hour: 0, Minute: 17}, {Hour: 9, Minute: 17}}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before first slot",
			now:  time.Date(2026, 8, 26, 0, 5, 0, 0, time.UTC),
			want: time.Date(2026, 8, 26, 0, 17, 0, 0, time.UTC),
		},
		{
			name: "between slots",
			now:  time.Date(2026, 8, 26, 5, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 26, 9, 17, 0, 0, time.UTC),
		},
		{
			name: "after last slot rolls to tomorrow",
			now:  time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 27, 0, 17, 0, 0, time.UTC),
		},
		{
			name: "exactly on a slot picks the next one",
			now:  time.Date(2026, 8, 26, 9, 17, 0, 0, time.UTC),
			want: time.Date(2026, 8, 27, 0, 17, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextUpdateAt(tt.now, slots); !got.Equal(tt.want) {
				t.Errorf("NextUpdateAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextUpdateAtUnsortedSlots(t *testing.T) {
	slots := []config.ScheduleSlot{{Hour: 9, Minute: 17}, {Hour: 0, Minute: 17}}
	now := time.Date(2026, 8, 26, 0, 5, 0, 0, time.UTC)
	want := time.Date(2026, 8, 26, 0, 17, 0, 0, time.UTC)
	if got := NextUpdateAt(now, slots); !got.Equal(want) {
		t.Errorf("NextUpdateAt with unsorted slots = %v, want %v", got, want)
	}
}
