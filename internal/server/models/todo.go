package models

import "time"

// Todo is a task record owned by exactly one user. UserID is immutable after
// creation; Title is never empty after normalization.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	IsCompleted bool
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
