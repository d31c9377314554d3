package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Mess represents a boarding house with a capacity and an optional owner.
// Occupancy and Revenue are running counters adjusted by the roster and
// billing services, never recomputed from scratch.
type Mess struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name      string  `gorm:"type:varchar(255);uniqueIndex" json:"name"`
	Address   string  `gorm:"type:varchar(255)" json:"address"`
	Contact   string  `gorm:"type:varchar(50)" json:"contact"`
	Capacity  int     `json:"capacity"`
	Occupancy int     `gorm:"default:0" json:"occupancy"`
	Revenue   float64 `gorm:"type:decimal(15,2);default:0" json:"revenue"`
	IsActive  bool    `gorm:"default:true" json:"is_active"`

	// OwnerID must stay symmetric with the owner's User.MessID. At most
	// one mess per owner, enforced by lookup on every bind.
	OwnerID *uint `gorm:"index" json:"owner_id"`

	// Relationships
	Owner    *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Students []Student `gorm:"foreignKey:MessID" json:"students,omitempty"`
}

// ContactOrOwner resolves the display contact: the mess's own contact if
// set, else the bound owner's, else a sentinel.
func (m Mess) ContactOrOwner() string {
	if strings.TrimSpace(m.Contact) != "" {
		return m.Contact
	}
	if m.Owner != nil && m.Owner.Contact != "" {
		return m.Owner.Contact
	}
	return "Not Provided"
}

// CapacityPercent is the rounded occupancy percentage, 0 when capacity
// is unset.
func (m Mess) CapacityPercent() int {
	if m.Capacity <= 0 {
		return 0
	}
	return int(float64(m.Occupancy)/float64(m.Capacity)*100 + 0.5)
}
