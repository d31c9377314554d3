package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMode is the channel a payment was collected through
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "Cash"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeBankTransfer PaymentMode = "Bank Transfer"
	PaymentModeCard         PaymentMode = "Card"
)

// Payment records money collected from a student. Payments are append-only
// facts: MessID, StudentID and Month never change, and Month is always the
// calendar month the payment was recorded in.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MessID    uint    `gorm:"index" json:"mess_id"`
	StudentID uint    `gorm:"index" json:"student_id"`
	Amount    float64 `gorm:"type:decimal(15,2)" json:"amount"`

	// Month key in YYYY-MM form, e.g. "2026-09".
	Month string `gorm:"type:varchar(7);index" json:"month"`

	PaymentDate time.Time   `json:"payment_date"`
	PaymentMode PaymentMode `gorm:"type:varchar(20);default:'Cash'" json:"payment_mode"`
	Note        string      `gorm:"type:varchar(255)" json:"note"`
	RecordedBy  uint        `json:"recorded_by"`

	// Relationships
	Mess     Mess    `gorm:"foreignKey:MessID" json:"mess,omitempty"`
	Student  Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Recorder User    `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}
