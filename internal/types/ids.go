package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// SnapshotID identifies one captured snapshot. IDs are time-ordered and
// collision-resistant: a second-resolution timestamp prefix keeps
// lexicographic order aligned with creation order, and a UUID-derived
// suffix disambiguates snapshots captured within the same second.
//
// Format: snapshot-YYYYMMDD-HHMMSS-xxxxxxxx
type SnapshotID string

const snapshotIDTimeLayout = "20060102-150405"

var snapshotIDPattern = regexp.MustCompile(`^snapshot-\d{8}-\d{6}-[0-9a-f]{8}$`)

// NewSnapshotID generates a SnapshotID for the given creation time.
// The entropy suffix comes from a fresh UUID v4.
func NewSnapshotID(ts time.Time) SnapshotID {
	suffix := uuid.New().String()[:8]
	return SnapshotID(fmt.Sprintf("snapshot-%s-%s", ts.UTC().Format(snapshotIDTimeLayout), suffix))
}

// ParseSnapshotID parses and validates a string as a SnapshotID.
func ParseSnapshotID(s string) (SnapshotID, error) {
	id := SnapshotID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks that the ID matches the snapshot id format.
// Returns an error if the ID is invalid or empty.
func (id SnapshotID) Validate() error {
	if id == "" {
		return fmt.Errorf("snapshot id cannot be empty")
	}
	if !snapshotIDPattern.MatchString(string(id)) {
		return fmt.Errorf("invalid snapshot id format: %q", string(id))
	}
	return nil
}

// String returns the string representation of the ID.
func (id SnapshotID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty or zero-valued.
func (id SnapshotID) IsZero() bool {
	return id == ""
}

// MarshalJSON implements the json.Marshaler interface.
// It serializes the ID as a JSON string.
func (id SnapshotID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// It deserializes a JSON string into a SnapshotID and validates it.
func (id *SnapshotID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot id: %w", err)
	}

	// Allow null/empty to set zero value
	if s == "" {
		*id = ""
		return nil
	}

	parsed, err := ParseSnapshotID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
