package sync

import (
	"encoding/json"
	"fmt"
	"time"
)

// Store collections and fixed document ids used by the pipeline.
const (
	EventsCollection   = "events"
	ConfigCollection   = "sync_config"
	MetadataCollection = "sync_metadata"

	configDocID   = "external-calendar"
	metadataDocID = "external-calendar"
	leaseDocID    = "external-calendar-lease"
)

// Persisted event document fields owned by the pipeline.
const (
	fieldName        = "name"
	fieldDate        = "date"
	fieldLink        = "externalLink"
	fieldDescription = "description"
	fieldLocation    = "location"
	fieldDiscipline  = "discipline"
	fieldTier        = "tier"
	fieldSource      = "source"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
)

// Config is the admin-authored sync configuration. The pipeline reads
// it; only UpdateConfig writes it.
type Config struct {
	Disciplines      []string  `json:"disciplines"`
	YearsAhead       int       `json:"yearsAhead"`
	SyncIntervalDays int       `json:"syncIntervalDays"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Metadata records the outcome of the latest sync attempt. A failed
// attempt keeps its timestamp but resets the count and coverage lists.
type Metadata struct {
	LastSyncDate    time.Time `json:"lastSyncDate"`
	LastSyncSuccess bool      `json:"lastSyncSuccess"`
	EventsCount     int       `json:"eventsCount"`
	YearsSync       []int     `json:"yearsSync"`
	DisciplinesSync []string  `json:"disciplinesSync"`
}

// State classifies the scheduler gate.
type State string

const (
	StateNeverConfigured State = "NEVER_CONFIGURED"
	StateDisabled        State = "DISABLED"
	StateUpToDate        State = "UP_TO_DATE"
	StateDue             State = "DUE"
	// StateRunning reports a run refused because another one holds the
	// lease.
	StateRunning State = "RUNNING"
)

// CheckResult answers "should a sync execute now".
type CheckResult struct {
	ShouldRun    bool       `json:"shouldRun"`
	State        State      `json:"state"`
	LastSyncDate *time.Time `json:"lastSyncDate,omitempty"`
	Config       *Config    `json:"config,omitempty"`
}

// Result is the structured outcome every sync request gets back,
// partial failures included.
type Result struct {
	Success bool     `json:"success"`
	State   State    `json:"state"`
	Message string   `json:"message"`
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidationError reports an out-of-range configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// toDoc converts a struct into the map form the document store takes.
func toDoc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromDoc decodes a stored document map into v.
func fromDoc(data map[string]any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
