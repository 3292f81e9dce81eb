package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// IssueType
func (t IssueType) String() string { return string(t) }

// Severity
func (s Severity) String() string { return string(s) }

// Category
func (c Category) String() string { return string(c) }
