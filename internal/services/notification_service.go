package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
)

// Notification is a derived alert. Nothing is persisted: Read is always
// false and alerts are rebuilt on every scan.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Read    bool   `json:"read"`
	MessID  *uint  `json:"mess_id,omitempty"`
}

const capacityAlertThreshold = 85

// NotificationService is a read-only aggregator over the mess registry,
// roster and billing state.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Alerts scans for capacity, overdue-payment and membership-expiry
// conditions, scoped to the caller's mess for owners and to all messes
// for admins.
func (s *NotificationService) Alerts(p *auth.Principal) ([]Notification, error) {
	now := time.Now()
	today := now.Format("2006-01-02")
	alerts := []Notification{}

	messQuery := s.db.Model(&models.Mess{})
	studentQuery := s.db.Model(&models.Student{})
	if !p.IsAdmin() {
		if p.MessID == nil {
			return alerts, nil
		}
		messQuery = messQuery.Where("id = ?", *p.MessID)
		studentQuery = studentQuery.Where("mess_id = ?", *p.MessID)
	}

	// Capacity: any mess at or above the threshold.
	var messes []models.Mess
	if err := messQuery.Find(&messes).Error; err != nil {
		return nil, fmt.Errorf("fetching messes: %w", err)
	}
	for _, m := range messes {
		percent := m.CapacityPercent()
		if percent >= capacityAlertThreshold {
			messID := m.ID
			alerts = append(alerts, Notification{
				Type:    "capacity",
				Message: fmt.Sprintf("%s is at %d%% capacity (%d/%d students)", m.Name, percent, m.Occupancy, m.Capacity),
				Date:    today,
				MessID:  &messID,
			})
		}
	}

	// Overdue: lapsed membership and current month not marked paid.
	currentMonth := MonthKey(now)
	var students []models.Student
	if err := studentQuery.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("fetching students: %w", err)
	}

	overdue := 0
	for _, st := range students {
		if !st.IsOverdue(now) {
			continue
		}
		status := StatusUnpaid
		if v, ok := st.PaymentStatus[currentMonth]; ok && v != "" {
			status = v
		}
		if status != StatusPaid {
			overdue++
		}
	}
	if overdue > 0 {
		scope := ""
		if p.IsAdmin() {
			scope = " across all messes"
		}
		alerts = append(alerts, Notification{
			Type:    "payment",
			Message: fmt.Sprintf("%d overdue payments pending%s", overdue, scope),
			Date:    today,
		})
	}

	// Expiring: membership ends within the current calendar month.
	monthStart, monthEnd := MonthWindow(now)
	expiringQuery := s.db.Model(&models.Student{}).
		Where("membership_end >= ? AND membership_end < ?", monthStart, monthEnd)
	if !p.IsAdmin() {
		expiringQuery = expiringQuery.Where("mess_id = ?", *p.MessID)
	}

	var expiring int64
	if err := expiringQuery.Count(&expiring).Error; err != nil {
		return nil, fmt.Errorf("counting expiring memberships: %w", err)
	}
	if expiring > 0 {
		alerts = append(alerts, Notification{
			Type:    "membership",
			Message: fmt.Sprintf("%d memberships expiring this month", expiring),
			Date:    today,
		})
	}

	return alerts, nil
}
