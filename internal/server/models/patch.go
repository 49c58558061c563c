package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field is an optional value that distinguishes "absent" from "set to null".
// encoding/json only calls UnmarshalJSON for keys present in the payload, so
// Set stays false for absent fields and Null marks an explicit JSON null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(b, []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// TodoPatch describes a partial update: only fields with Set=true are
// applied. Title and IsCompleted do not accept null.
type TodoPatch struct {
	Title       Field[string]    `json:"title"`
	Description Field[string]    `json:"description"`
	IsCompleted Field[bool]      `json:"is_completed"`
	DueDate     Field[time.Time] `json:"due_date"`
}

// Empty reports whether the patch carries no changes.
func (p *TodoPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.IsCompleted.Set && !p.DueDate.Set
}
