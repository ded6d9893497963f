// Package patterns builds posting-time histograms from extracted records.
package patterns

import (
	"time"

	"personalens/pkg/models"
)

// NotAvailable is the peak reported for an empty histogram.
const NotAvailable = "N/A"

// Slots are the 4-hour UTC buckets in chronological order.
var Slots = []string{"00-04", "04-08", "08-12", "12-16", "16-20", "20-24"}

// Days are the weekday buckets in chronological order, Monday first.
var Days = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// SlotFor returns the bucket label for an hour of the day.
func SlotFor(hour int) string {
	if hour < 0 || hour > 23 {
		return Slots[0]
	}
	return Slots[hour/4]
}

// Aggregate counts records per UTC weekday and 4-hour slot. Records without
// a decoded timestamp are skipped. Every weekday and slot has a key, zero
// when unobserved.
func Aggregate(records []models.TweetRecord) models.PostingPattern {
	p := models.PostingPattern{
		Days:  make(map[string]int, len(Days)),
		Slots: make(map[string]int, len(Slots)),
	}
	for _, d := range Days {
		p.Days[d] = 0
	}
	for _, s := range Slots {
		p.Slots[s] = 0
	}
	for _, r := range records {
		if r.TimestampMS == 0 {
			continue
		}
		at := r.PostedAt()
		p.Days[at.Weekday().String()]++
		p.Slots[SlotFor(at.Hour())]++
		p.Total++
	}
	return p
}

// PeakDay returns the busiest weekday. Ties go to the earlier day of the week.
func PeakDay(p models.PostingPattern) string {
	return peak(p.Days, Days)
}

// PeakSlot returns the busiest slot. Ties go to the earlier slot.
func PeakSlot(p models.PostingPattern) string {
	return peak(p.Slots, Slots)
}

func peak(counts map[string]int, order []string) string {
	best, bestCount := NotAvailable, 0
	for _, key := range order {
		if c := counts[key]; c > bestCount {
			best, bestCount = key, c
		}
	}
	return best
}
