package tasks

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"trackmymess/internal/auth"
	"trackmymess/internal/models"
	"trackmymess/internal/services"
)

// AlertDigestTaskDef runs the alert aggregation across all messes and
// records the counts, giving operators a periodic snapshot without
// polling the API.
type AlertDigestTaskDef struct{}

var AlertDigestTask = &AlertDigestTaskDef{}

// TaskID returns the unique identifier for this task
func (t *AlertDigestTaskDef) TaskID() string {
	return "alert_digest"
}

// CreateTask builds a recurring ScheduledTask firing on the given RRULE.
func (t *AlertDigestTaskDef) CreateTask(due time.Time, recurringInterval string) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, due, &recurringInterval, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution scans admin-wide and logs each alert.
func (t *AlertDigestTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	admin := &auth.Principal{Role: models.RoleAdmin}
	alerts, err := services.NewNotificationService(db).Alerts(admin)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, alert := range alerts {
		counts[alert.Type]++
		slog.Info("alert", "type", alert.Type, "message", alert.Message)
	}

	return map[string]interface{}{
		"total":      len(alerts),
		"capacity":   counts["capacity"],
		"payment":    counts["payment"],
		"membership": counts["membership"],
	}, nil
}

// SubscriptionSweepTaskDef surfaces owners whose subscription has lapsed.
// Login already blocks them; the sweep gets them into the ops log and
// task history so admins notice without waiting for a failed login.
type SubscriptionSweepTaskDef struct{}

var SubscriptionSweepTask = &SubscriptionSweepTaskDef{}

// TaskID returns the unique identifier for this task
func (t *SubscriptionSweepTaskDef) TaskID() string {
	return "subscription_sweep"
}

// CreateTask builds a recurring ScheduledTask firing on the given RRULE.
func (t *SubscriptionSweepTaskDef) CreateTask(due time.Time, recurringInterval string) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, due, &recurringInterval, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution lists active owners with a lapsed subscription.
func (t *SubscriptionSweepTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var owners []models.User
	err := db.Where("role = ? AND is_active = ? AND subscription_expiry IS NOT NULL AND subscription_expiry < ?",
		models.RoleOwner, true, time.Now()).Find(&owners).Error
	if err != nil {
		return nil, err
	}

	expired := make([]string, 0, len(owners))
	for _, o := range owners {
		expired = append(expired, o.Username)
		slog.Warn("owner subscription expired", "username", o.Username, "expiry", o.SubscriptionExpiry)
	}

	return map[string]interface{}{
		"expired_count":  len(expired),
		"expired_owners": expired,
	}, nil
}
