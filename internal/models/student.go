package models

import (
	"time"

	"gorm.io/gorm"
)

// MealPlan is the plan a student is enrolled on
type MealPlan string

const (
	MealPlanFull   MealPlan = "Full"
	MealPlanHalf   MealPlan = "Half"
	MealPlanCustom MealPlan = "Custom"
)

// MembershipDays is the length of one membership period. Each payment for
// the current month extends the membership window by this much.
const MembershipDays = 30

// Student represents a boarder registered to a mess. MessID never changes
// after creation.
type Student struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MessID   uint     `gorm:"index" json:"mess_id"`
	Name     string   `gorm:"type:varchar(255)" json:"name"`
	Mobile   string   `gorm:"type:varchar(50)" json:"mobile"`
	Address  string   `gorm:"type:varchar(255)" json:"address"`
	Gender   string   `gorm:"type:varchar(20);default:'Male'" json:"gender"`
	MealPlan MealPlan `gorm:"type:varchar(20);default:'Full'" json:"meal_plan"`
	Fee      float64  `gorm:"type:decimal(15,2)" json:"fee"`
	Remarks  string   `gorm:"type:varchar(255)" json:"remarks"`

	StartDate     time.Time `json:"start_date"`
	MembershipEnd time.Time `json:"membership_end"`

	// PaymentStatus maps a month key (YYYY-MM) to a status string. It is
	// written through on payment recording; read paths derive status from
	// the payment records themselves.
	PaymentStatus map[string]string `gorm:"serializer:json" json:"payment_status"`

	IsFrozen    bool       `gorm:"default:false" json:"is_frozen"`
	FreezeStart *time.Time `json:"freeze_start"`
	FreezeEnd   *time.Time `json:"freeze_end"`

	// Relationships
	Mess     Mess      `gorm:"foreignKey:MessID" json:"mess,omitempty"`
	Payments []Payment `gorm:"foreignKey:StudentID" json:"payments,omitempty"`
}

// BeforeCreate fills in the membership window defaults: StartDate falls
// back to now and MembershipEnd to StartDate plus one membership period.
func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.StartDate.IsZero() {
		s.StartDate = time.Now()
	}
	if s.MembershipEnd.IsZero() {
		s.MembershipEnd = s.StartDate.AddDate(0, 0, MembershipDays)
	}
	return nil
}

// IsOverdue reports whether the membership window has lapsed.
func (s Student) IsOverdue(now time.Time) bool {
	return !s.MembershipEnd.IsZero() && s.MembershipEnd.Before(now)
}
