package common

import "time"

// TimestampLayout is the layout used by the upstream API for every timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// StatusCounts partitions a filtered record set by status
type StatusCounts struct {
	Completed int `json:"completed"`
	Canceled  int `json:"canceled"`
	Open      int `json:"open"`
}

// Sum returns the total number of partitioned records
func (sc StatusCounts) Sum() int {
	return sc.Completed + sc.Canceled + sc.Open
}

// LeaderboardEntry is one ranked assignee
type LeaderboardEntry struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
}

// RecordView is the display form of a record inside an attribute bundle
type RecordView struct {
	Key            string `json:"id"`
	Reference      string `json:"reference,omitempty"`
	PickerName     string `json:"picker_name"`
	BatchType      string `json:"batch_type,omitempty"`
	TotalProducts  int    `json:"total_products"`
	TotalPicklists int    `json:"total_picklists"`
	CreatedAt      string `json:"created_at"`
	Duration       string `json:"duration"`
	Status         string `json:"status"`
}

// AggregatedSnapshot is the output of one aggregation pass. It is rebuilt on every tick and never patched.
type AggregatedSnapshot struct {
	Scalar         float64
	Total          int
	StatusCounts   StatusCounts
	Records        []RecordView
	Leaderboard    []LeaderboardEntry
	TotalProducts  int
	TotalPicklists int
	SkippedRecords int
	WindowStart    time.Time
	WindowEnd      time.Time
}

const numLeaderboardShortcuts = 3

// Attributes builds a fresh attribute bundle out of the snapshot
func (s AggregatedSnapshot) Attributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"total":           s.Total,
		"completed":       s.StatusCounts.Completed,
		"canceled":        s.StatusCounts.Canceled,
		"open":            s.StatusCounts.Open,
		"total_products":  s.TotalProducts,
		"total_picklists": s.TotalPicklists,
		"skipped_records": s.SkippedRecords,
		"records":         s.Records,
		"leaderboard":     s.Leaderboard,
	}
	if !s.WindowStart.IsZero() {
		attrs["window_start"] = s.WindowStart.Format(TimestampLayout)
		attrs["window_end"] = s.WindowEnd.Format(TimestampLayout)
	}

	ordinals := []string{"first", "second", "third"}
	for i := 0; i < numLeaderboardShortcuts && i < len(s.Leaderboard); i++ {
		attrs["top_"+ordinals[i]+"_picker"] = s.Leaderboard[i].Name
		attrs["top_"+ordinals[i]+"_products"] = s.Leaderboard[i].Products
	}

	return attrs
}
