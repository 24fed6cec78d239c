package pipeline

import (
	"fmt"
	"sort"
	"time"

	"trendpulse/internal/config"
)

// kstZone is the fixed KST offset used for snapshot IDs. The zone has no
// DST so a fixed offset is exact.
var kstZone = time.FixedZone("KST", 9*60*60)

// SnapshotID formats an instant as the YYYYMMDD_HHMM_KST snapshot key.
func SnapshotID(now time.Time) string {
	return fmt.Sprintf("%s_KST", now.In(kstZone).Format("20060102_1504"))
}

// NextUpdateAt resolves the next scheduled run after now: the first slot
// strictly later today in UTC, else the first slot tomorrow.
func NextUpdateAt(now time.Time, slots []config.ScheduleSlot) time.Time {
	now = now.UTC()
	slots = append([]config.ScheduleSlot(nil), slots...)
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		return slots[i].Minute < slots[j].Minute
	})
	for _, slot := range slots {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), slot.Hour, slot.Minute, 0, 0, time.UTC)
		if candidate.After(now) {
			return candidate
		}
	}
	first := slots[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.Hour, first.Minute, 0, 0, time.UTC)
}
