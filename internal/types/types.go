// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Record is one entry in the managed collection.
//
// The JSON keys ("nome", "idade") are the wire names clients already
// use; the Go field names describe what the values are.
type Record struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
	Age  int    `json:"idade"`
}

// RecordInput is the body accepted by the create endpoint.
//
// Every field is a pointer so that "missing" and "zero" can be told
// apart: validate:"required" on a pointer only fails when the key was
// absent (or null), so {"id":0,"nome":"","idade":0} is complete.
type RecordInput struct {
	ID   *int    `json:"id"    validate:"required"`
	Name *string `json:"nome"  validate:"required"`
	Age  *int    `json:"idade" validate:"required"`
}

// Record converts a validated input into a Record.
// Call it only after validation succeeded; nil fields become zero values.
func (in RecordInput) Record() Record {
	var r Record
	if in.ID != nil {
		r.ID = *in.ID
	}
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Age != nil {
		r.Age = *in.Age
	}
	return r
}

// RecordPatch is a partial update. Only non-nil fields are applied.
type RecordPatch struct {
	ID   *int    `json:"id,omitempty"`
	Name *string `json:"nome,omitempty"`
	Age  *int    `json:"idade,omitempty"`
}

// Apply shallow-merges the supplied fields into r and returns the result.
func (p RecordPatch) Apply(r Record) Record {
	if p.ID != nil {
		r.ID = *p.ID
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Age != nil {
		r.Age = *p.Age
	}
	return r
}
