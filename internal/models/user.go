package models

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the access level of a user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// User represents an admin or a mess owner
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Username string `gorm:"type:varchar(100);uniqueIndex" json:"username"`
	Password string `gorm:"type:varchar(255)" json:"-"`
	Role     Role   `gorm:"type:varchar(20)" json:"role"`
	Name     string `gorm:"type:varchar(255)" json:"name"`
	Contact  string `gorm:"type:varchar(50)" json:"contact"`
	Email    string `gorm:"type:varchar(255)" json:"email"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Owners only. MessID must stay symmetric with Mess.OwnerID;
	// an expired subscription blocks login.
	MessID             *uint      `json:"mess_id"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`

	// Relationships
	Mess *Mess `gorm:"foreignKey:MessID" json:"mess,omitempty"`
}

// SubscriptionExpired reports whether an owner's subscription has lapsed.
// Users without an expiry never expire.
func (u User) SubscriptionExpired(now time.Time) bool {
	return u.Role == RoleOwner && u.SubscriptionExpiry != nil && u.SubscriptionExpiry.Before(now)
}
