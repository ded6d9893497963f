package patterns

import (
	"testing"
	"time"

	"personalens/pkg/models"

	"github.com/stretchr/testify/assert"
)

func at(t time.Time) models.TweetRecord {
	return models.TweetRecord{TimestampMS: uint64(t.UnixMilli())}
}

func TestSlotFor(t *testing.T) {
	tests := map[int]string{
		0: "00-04", 3: "00-04", 4: "04-08", 11: "08-12",
		12: "12-16", 19: "16-20", 20: "20-24", 23: "20-24",
		-1: "00-04", 24: "00-04",
	}
	for hour, want := range tests {
		assert.Equal(t, want, SlotFor(hour), "hour %d", hour)
	}
}

func TestAggregate(t *testing.T) {
	records := []models.TweetRecord{
		// Monday 2024-01-01 09:30 UTC
		at(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)),
		// Monday 2024-01-08 10:00 UTC
		at(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)),
		// Wednesday 2024-01-03 22:15 UTC
		at(time.Date(2024, 1, 3, 22, 15, 0, 0, time.UTC)),
		// Non-UTC input lands in its UTC bucket: Tue 23:00 -05:00 is Wed 04:00 UTC.
		at(time.Date(2024, 1, 2, 23, 0, 0, 0, time.FixedZone("EST", -5*3600))),
		{ID: "junk", TimestampMS: 0},
	}

	p := Aggregate(records)

	assert.Equal(t, 4, p.Total)
	assert.Equal(t, map[string]int{
		"Monday": 2, "Tuesday": 0, "Wednesday": 2, "Thursday": 0,
		"Friday": 0, "Saturday": 0, "Sunday": 0,
	}, p.Days)
	assert.Equal(t, map[string]int{
		"00-04": 0, "04-08": 1, "08-12": 2, "12-16": 0, "16-20": 0, "20-24": 1,
	}, p.Slots)
	assert.Equal(t, "Monday", PeakDay(p))
	assert.Equal(t, "08-12", PeakSlot(p))
}

func TestAggregateFromSnowflakeTimestamps(t *testing.T) {
	// 1706067488084 is Wednesday 2024-01-24 03:38:08 UTC.
	p := Aggregate([]models.TweetRecord{
		{ID: "1750000000000000001", TimestampMS: 1706067488084},
		{ID: "1750000000000000002", TimestampMS: 1706067488084},
	})
	assert.Len(t, p.Days, 7)
	assert.Len(t, p.Slots, 6)
	assert.Equal(t, 2, p.Days["Wednesday"])
	assert.Equal(t, 2, p.Slots["00-04"])
	assert.Equal(t, "Wednesday", PeakDay(p))
	assert.Equal(t, "00-04", PeakSlot(p))
}

func TestAggregateEmpty(t *testing.T) {
	p := Aggregate(nil)
	assert.Len(t, p.Days, 7)
	assert.Len(t, p.Slots, 6)
	for _, d := range Days {
		assert.Contains(t, p.Days, d)
		assert.Zero(t, p.Days[d])
	}
	for _, s := range Slots {
		assert.Contains(t, p.Slots, s)
		assert.Zero(t, p.Slots[s])
	}
	assert.Zero(t, p.Total)
	assert.Equal(t, NotAvailable, PeakDay(p))
	assert.Equal(t, NotAvailable, PeakSlot(p))
}

func TestPeakTieBreakIsChronological(t *testing.T) {
	p := models.PostingPattern{
		Days:  map[string]int{"Sunday": 3, "Tuesday": 3, "Friday": 1},
		Slots: map[string]int{"20-24": 5, "04-08": 5},
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "Tuesday", PeakDay(p))
		assert.Equal(t, "04-08", PeakSlot(p))
	}
}
