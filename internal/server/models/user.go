// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. Email is stored lowercased and unique.
// PasswordHash is a bcrypt hash and must never be serialized to clients.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
