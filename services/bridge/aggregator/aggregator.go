package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
)

// ScalarKind selects the scalar reported by a snapshot
type ScalarKind string

// Supported scalar kinds
const (
	ScalarCount     ScalarKind = "count"
	ScalarProducts  ScalarKind = "products"
	ScalarPicklists ScalarKind = "picklists"
	ScalarCompleted ScalarKind = "completed"
	ScalarOpen      ScalarKind = "open"
)

// ParseScalarKind validates a configured scalar kind
func ParseScalarKind(kind string) (ScalarKind, error) {
	switch sk := ScalarKind(kind); sk {
	case ScalarCount, ScalarProducts, ScalarPicklists, ScalarCompleted, ScalarOpen:
		return sk, nil
	default:
		return "", fmt.Errorf("unknown scalar kind %q", kind)
	}
}

// Status buckets of the partition
const (
	bucketCompleted = "completed"
	bucketCanceled  = "canceled"
	bucketOpen      = "open"
)

// Classify assigns an upstream status to exactly one bucket: completed, canceled or (anything else) open
func Classify(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "closed":
		return bucketCompleted
	case "canceled", "cancelled":
		return bucketCanceled
	default:
		return bucketOpen
	}
}

// Filter keeps, in order, the records whose creation moment falls inside the window
func Filter(records []common.RawRecord, asOf time.Time, window Window) []common.RawRecord {
	filtered := make([]common.RawRecord, 0, len(records))
	for _, r := range records {
		if window.Contains(r.CreatedAt, asOf) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

// PartitionByStatus counts the records per status bucket. The counts always sum to len(records).
func PartitionByStatus(records []common.RawRecord) common.StatusCounts {
	counts := common.StatusCounts{}
	for _, r := range records {
		switch Classify(r.Status) {
		case bucketCompleted:
			counts.Completed++
		case bucketCanceled:
			counts.Canceled++
		default:
			counts.Open++
		}
	}

	return counts
}

// Leaderboard sums the products per assignee and ranks the assignees by descending sum. Ties keep the order in which
// the assignees were first encountered. The Unassigned and Unknown placeholders never rank.
func Leaderboard(records []common.RawRecord) []common.LeaderboardEntry {
	index := make(map[string]int)
	entries := make([]common.LeaderboardEntry, 0)
	for _, r := range records {
		if r.Assignee == common.AssigneeUnassigned || r.Assignee == common.AssigneeUnknown || r.Assignee == "" {
			continue
		}

		pos, found := index[r.Assignee]
		if !found {
			pos = len(entries)
			index[r.Assignee] = pos
			entries = append(entries, common.LeaderboardEntry{Name: r.Assignee})
		}
		entries[pos].Products += r.Products
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Products > entries[j].Products
	})

	return entries
}

// FormatElapsed renders asOf - createdAt truncated to whole seconds
func FormatElapsed(asOf time.Time, createdAt time.Time) string {
	return asOf.Sub(createdAt).Truncate(time.Second).String()
}

// ToRecordView builds the display form of a record
func ToRecordView(r common.RawRecord, asOf time.Time) common.RecordView {
	return common.RecordView{
		Key:            r.Key,
		Reference:      r.Reference,
		PickerName:     r.Assignee,
		BatchType:      r.Type,
		TotalProducts:  r.Products,
		TotalPicklists: r.Picklists,
		CreatedAt:      r.CreatedAt.Format(common.TimestampLayout),
		Duration:       FormatElapsed(asOf, r.CreatedAt),
		Status:         r.Status,
	}
}

// Aggregate filters the records to the window and reduces them into a new snapshot
func Aggregate(records []common.RawRecord, asOf time.Time, window Window, scalar ScalarKind) common.AggregatedSnapshot {
	filtered := Filter(records, asOf, window)

	snapshot := common.AggregatedSnapshot{
		Total:        len(filtered),
		StatusCounts: PartitionByStatus(filtered),
		Records:      make([]common.RecordView, 0, len(filtered)),
		Leaderboard:  Leaderboard(filtered),
	}
	snapshot.WindowStart, snapshot.WindowEnd = window.Bounds(asOf)

	for _, r := range filtered {
		snapshot.TotalProducts += r.Products
		snapshot.TotalPicklists += r.Picklists
		snapshot.Records = append(snapshot.Records, ToRecordView(r, asOf))
	}

	switch scalar {
	case ScalarProducts:
		snapshot.Scalar = float64(snapshot.TotalProducts)
	case ScalarPicklists:
		snapshot.Scalar = float64(snapshot.TotalPicklists)
	case ScalarCompleted:
		snapshot.Scalar = float64(snapshot.StatusCounts.Completed)
	case ScalarOpen:
		snapshot.Scalar = float64(snapshot.StatusCounts.Open)
	default:
		snapshot.Scalar = float64(snapshot.Total)
	}

	return snapshot
}
