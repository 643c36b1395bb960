package mapper

import (
	"fmt"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("mapper")

// RecordSchema holds the gjson paths used to map one list entry into a common.RawRecord
type RecordSchema struct {
	KeyPath       string
	ReferencePath string
	AssigneePath  string
	AssigneeName  string
	TypePath      string
	ProductsPath  string
	PicklistsPath string
	TimestampPath string
	StatusPath    string
}

// BatchSchema maps entries of the picklists/batches endpoint
var BatchSchema = RecordSchema{
	KeyPath:       "idpicklist_batch",
	ReferencePath: "picklist_batchid",
	AssigneePath:  "assigned_to",
	AssigneeName:  "full_name",
	TypePath:      "type",
	ProductsPath:  "total_products",
	PicklistsPath: "total_picklists",
	TimestampPath: "created_at",
	StatusPath:    "status",
}

// PicklistSchema maps entries of the picklists endpoint; the timestamp used for windows is the closing moment
var PicklistSchema = RecordSchema{
	KeyPath:       "idpicklist",
	ReferencePath: "picklistid",
	AssigneePath:  "closed_by",
	AssigneeName:  "full_name",
	TypePath:      "",
	ProductsPath:  "totalproducts",
	PicklistsPath: "",
	TimestampPath: "closed_at",
	StatusPath:    "status",
}

// SchemaByName returns the built-in schema registered under the provided configuration name
func SchemaByName(name string) (RecordSchema, bool) {
	switch name {
	case "batch":
		return BatchSchema, true
	case "picklist":
		return PicklistSchema, true
	default:
		return RecordSchema{}, false
	}
}

// DecodeRecord maps a single entry. Missing keys or unparsable timestamps return an error wrapping client.ErrMapping.
func DecodeRecord(entry gjson.Result, schema RecordSchema, loc *time.Location) (common.RawRecord, error) {
	if !entry.IsObject() {
		return common.RawRecord{}, fmt.Errorf("%w: entry is not a JSON object", client.ErrMapping)
	}

	key := entry.Get(schema.KeyPath)
	if !key.Exists() || key.String() == "" {
		return common.RawRecord{}, fmt.Errorf("%w: missing %q", client.ErrMapping, schema.KeyPath)
	}

	rawTimestamp := entry.Get(schema.TimestampPath).String()
	createdAt, err := time.ParseInLocation(common.TimestampLayout, rawTimestamp, loc)
	if err != nil {
		return common.RawRecord{}, fmt.Errorf("%w: record %s has invalid %q value %q", client.ErrMapping, key.String(), schema.TimestampPath, rawTimestamp)
	}

	record := common.RawRecord{
		Key:       key.String(),
		Assignee:  resolveAssignee(entry, schema),
		Products:  int(entry.Get(schema.ProductsPath).Int()),
		CreatedAt: createdAt,
		Status:    entry.Get(schema.StatusPath).String(),
	}
	if schema.ReferencePath != "" {
		record.Reference = entry.Get(schema.ReferencePath).String()
	}
	if schema.TypePath != "" {
		record.Type = entry.Get(schema.TypePath).String()
	}
	if schema.PicklistsPath != "" {
		record.Picklists = int(entry.Get(schema.PicklistsPath).Int())
	} else {
		record.Picklists = 1
	}

	return record, nil
}

// resolveAssignee returns the sentinel "Unassigned" for a null/absent assignment and "Unknown" for an assignment
// without a usable name
func resolveAssignee(entry gjson.Result, schema RecordSchema) string {
	assignee := entry.Get(schema.AssigneePath)
	if !assignee.Exists() || assignee.Type == gjson.Null {
		return common.AssigneeUnassigned
	}

	name := assignee.Get(schema.AssigneeName).String()
	if !assignee.IsObject() || name == "" {
		return common.AssigneeUnknown
	}

	return name
}

// DecodeRecords maps all entries, skipping (and counting) the ones that fail mapping so one malformed record never
// invalidates the rest of the list
func DecodeRecords(entries []gjson.Result, schema RecordSchema, loc *time.Location) ([]common.RawRecord, int) {
	records := make([]common.RawRecord, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		record, err := DecodeRecord(entry, schema, loc)
		if err != nil {
			skipped++
			log.Debug("skipping record", "error", err)
			continue
		}

		records = append(records, record)
	}

	return records, skipped
}
