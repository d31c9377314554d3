package services

import (
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"trackmymess/internal/models"
)

func alertTypes(alerts []Notification) []string {
	types := make([]string, 0, len(alerts))
	for _, a := range alerts {
		types = append(types, a.Type)
	}
	return types
}

func hasType(alerts []Notification, typ string) bool {
	for _, a := range alerts {
		if a.Type == typ {
			return true
		}
	}
	return false
}

func setOccupancy(t *testing.T, db *gorm.DB, messID uint, occupancy int) {
	t.Helper()
	if err := db.Model(&models.Mess{}).Where("id = ?", messID).
		UpdateColumn("occupancy", occupancy).Error; err != nil {
		t.Fatalf("setting occupancy: %v", err)
	}
}

func TestCapacityAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	mess := seedMess(t, db, "Green Valley", 10)

	t.Run("below threshold is quiet", func(t *testing.T) {
		setOccupancy(t, db, mess.ID, 8)
		alerts, err := svc.Alerts(adminPrincipal())
		if err != nil {
			t.Fatalf("Alerts: %v", err)
		}
		if hasType(alerts, "capacity") {
			t.Errorf("unexpected capacity alert at 80%%: %v", alertTypes(alerts))
		}
	})

	t.Run("at threshold fires", func(t *testing.T) {
		setOccupancy(t, db, mess.ID, 9)
		alerts, err := svc.Alerts(adminPrincipal())
		if err != nil {
			t.Fatalf("Alerts: %v", err)
		}
		if !hasType(alerts, "capacity") {
			t.Fatalf("no capacity alert at 90%%: %v", alertTypes(alerts))
		}
		for _, a := range alerts {
			if a.Type != "capacity" {
				continue
			}
			if !strings.Contains(a.Message, "Green Valley") || !strings.Contains(a.Message, "90%") {
				t.Errorf("message = %q", a.Message)
			}
			if a.MessID == nil || *a.MessID != mess.ID {
				t.Errorf("mess id = %v, want %d", a.MessID, mess.ID)
			}
		}
	})
}

func TestOverdueAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	mess := seedMess(t, db, "Green Valley", 100)

	lapsed := time.Now().AddDate(0, -2, 0)
	overdueA := models.Student{MessID: mess.ID, Name: "Arjun", Mobile: "1", MembershipEnd: lapsed}
	overdueB := models.Student{MessID: mess.ID, Name: "Bina", Mobile: "2", MembershipEnd: lapsed}
	// Lapsed but the current month is already credited.
	paid := models.Student{
		MessID: mess.ID, Name: "Chetan", Mobile: "3", MembershipEnd: lapsed,
		PaymentStatus: map[string]string{MonthKey(time.Now()): StatusPaid},
	}
	current := models.Student{MessID: mess.ID, Name: "Dev", Mobile: "4", MembershipEnd: time.Now().AddDate(0, 2, 0)}
	for _, s := range []*models.Student{&overdueA, &overdueB, &paid, &current} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seeding student: %v", err)
		}
	}

	alerts, err := svc.Alerts(adminPrincipal())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	found := false
	for _, a := range alerts {
		if a.Type != "payment" {
			continue
		}
		found = true
		if !strings.Contains(a.Message, "2 overdue") {
			t.Errorf("message = %q, want 2 overdue", a.Message)
		}
		if !strings.Contains(a.Message, "across all messes") {
			t.Errorf("admin message = %q, want cross-mess suffix", a.Message)
		}
	}
	if !found {
		t.Fatalf("no payment alert: %v", alertTypes(alerts))
	}
}

func TestExpiringAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	mess := seedMess(t, db, "Green Valley", 100)

	start, _ := MonthWindow(time.Now())
	inMonth := models.Student{MessID: mess.ID, Name: "Arjun", Mobile: "1", MembershipEnd: start.AddDate(0, 0, 10)}
	nextMonth := models.Student{MessID: mess.ID, Name: "Bina", Mobile: "2", MembershipEnd: start.AddDate(0, 1, 10)}
	for _, s := range []*models.Student{&inMonth, &nextMonth} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seeding student: %v", err)
		}
	}

	alerts, err := svc.Alerts(adminPrincipal())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	found := false
	for _, a := range alerts {
		if a.Type == "membership" {
			found = true
			if !strings.Contains(a.Message, "1 memberships expiring") {
				t.Errorf("message = %q", a.Message)
			}
		}
	}
	if !found {
		t.Fatalf("no membership alert: %v", alertTypes(alerts))
	}
}

func TestAlertsOwnerScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	mine := seedMess(t, db, "Green Valley", 10)
	other := seedMess(t, db, "Hilltop", 10)
	setOccupancy(t, db, other.ID, 10)

	alerts, err := svc.Alerts(ownerPrincipal(7, mine.ID))
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("owner sees foreign alerts: %v", alertTypes(alerts))
	}

	t.Run("unbound owner gets nothing", func(t *testing.T) {
		p := ownerPrincipal(7, mine.ID)
		p.MessID = nil
		alerts, err := svc.Alerts(p)
		if err != nil {
			t.Fatalf("Alerts: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("unbound owner alerts = %v", alertTypes(alerts))
		}
	})
}
