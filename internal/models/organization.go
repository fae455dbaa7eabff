package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the tenant owning users, bank accounts and documents.
type Organization struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"name"`
}

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	// OrganizationID is nil for users not attached to any organization yet.
	OrganizationID *uint         `gorm:"index" json:"organization_id,omitempty"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}
