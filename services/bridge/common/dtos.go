package common

import "time"

// State classes understood by the host
const (
	StateClassMeasurement     = "measurement"
	StateClassTotalIncreasing = "total_increasing"
)

// Display tokens used instead of a value when a tick failed
const (
	StateError         = "Error"
	StateInvalidFormat = "Invalid format"
)

// Placeholders used when a record has no usable assignee
const (
	AssigneeUnassigned = "Unassigned"
	AssigneeUnknown    = "Unknown"
)

// DefaultIcon is the icon used by every unit that does not define its own
const DefaultIcon = "mdi:asterisk-circle-outline"

// Credential holds the immutable access data of one configured store
type Credential struct {
	APIKey      string
	StorePrefix string
}

// UnitDescriptor is the static part of a unit, as registered with the host
type UnitDescriptor struct {
	Name       string `json:"name"`
	UniqueID   string `json:"unique_id"`
	Unit       string `json:"unit_of_measurement,omitempty"`
	StateClass string `json:"state_class,omitempty"`
	Icon       string `json:"icon,omitempty"`
}

// UnitState is the current value of a unit. Value holds either a number, a status string or one of the
// display tokens. A new UnitState replaces the previous one wholesale.
type UnitState struct {
	Value      interface{}            `json:"state"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// RawRecord is one upstream list entry (picklist batch or picklist) after mapping
type RawRecord struct {
	Key       string
	Reference string
	Assignee  string
	Type      string
	Products  int
	Picklists int
	CreatedAt time.Time
	Status    string
}
