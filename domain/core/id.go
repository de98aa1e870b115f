package core

import "github.com/google/uuid"

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RunID identifies one pipeline invocation in logs and reports
type RunID ID

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID { return RunID(NewID()) }

func (id RunID) String() string { return ID(id).String() }

// Short returns the first eight characters, enough to tell runs apart in a log
func (id RunID) Short() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// AnalyteKey names a measured column, e.g. "Organic C H2O ppm"
type AnalyteKey string

func (k AnalyteKey) String() string { return string(k) }

// FieldKey names a sampled field (the grouping unit)
type FieldKey string

func (k FieldKey) String() string { return string(k) }
