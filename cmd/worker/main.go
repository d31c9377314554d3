package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"trackmymess/internal/models"
	"trackmymess/internal/services"
	"trackmymess/internal/tasks"
	"trackmymess/pkg/logging"
)

const pollInterval = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment")
	}
	logging.Setup()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	db, err := services.InitDB(dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	tasks.DefineTasks()
	ensureRecurringTasks(db)

	slog.Info("worker started", "poll_interval", pollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down worker")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// One run at startup so fresh deployments don't wait a full tick.
	processScheduledTasks(ctx, db)

	for {
		select {
		case <-ticker.C:
			processScheduledTasks(ctx, db)
		case <-ctx.Done():
			return
		}
	}
}

// ensureRecurringTasks seeds the standing recurring tasks on first boot.
func ensureRecurringTasks(db *gorm.DB) {
	defs := []struct {
		name  string
		build func(time.Time, string) (*models.ScheduledTask, error)
		rule  string
	}{
		{tasks.AlertDigestTask.TaskID(), tasks.AlertDigestTask.CreateTask, "FREQ=DAILY"},
		{tasks.SubscriptionSweepTask.TaskID(), tasks.SubscriptionSweepTask.CreateTask, "FREQ=DAILY"},
	}

	for _, def := range defs {
		var count int64
		if err := db.Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ?", def.name, models.ScheduledTaskStatusActive).
			Count(&count).Error; err != nil {
			slog.Error("checking recurring task", "task", def.name, "error", err)
			continue
		}
		if count > 0 {
			continue
		}

		task, err := def.build(time.Now(), def.rule)
		if err != nil {
			slog.Error("building recurring task", "task", def.name, "error", err)
			continue
		}
		if err := db.Create(task).Error; err != nil {
			slog.Error("seeding recurring task", "task", def.name, "error", err)
			continue
		}
		slog.Info("seeded recurring task", "task", def.name, "rule", def.rule)
	}
}

func processScheduledTasks(ctx context.Context, db *gorm.DB) {
	var pendingTasks []models.ScheduledTask
	now := time.Now()
	if err := db.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).Find(&pendingTasks).Error; err != nil {
		slog.Error("fetching pending tasks", "error", err)
		return
	}

	if len(pendingTasks) == 0 {
		return
	}

	slog.Info("processing pending tasks", "count", len(pendingTasks))

	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		executeTask(ctx, db, task)
	}
}

func executeTask(ctx context.Context, db *gorm.DB, task models.ScheduledTask) {
	slog.Info("processing task", "task", task.TaskName, "id", task.ID)

	handler, found := tasks.GetHandler(task.TaskName)
	if !found {
		slog.Error("task handler not found", "task", task.TaskName)

		now := time.Now()
		db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "handler not found"},
		})
		return
	}

	var (
		result  map[string]interface{}
		err     error
		startAt time.Time
		runtime time.Duration
	)
	for attempt := 1; ; attempt++ {
		startAt = time.Now()
		result, err = handler(ctx, db, task)
		runtime = time.Since(startAt)

		status := "success"
		if err != nil {
			status = "failure"
			result = map[string]interface{}{"error": err.Error()}
			slog.Error("task failed", "task", task.TaskName, "attempt", attempt, "error", err)
		}

		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           startAt,
			RuntimeMs:       int(runtime.Milliseconds()),
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          result,
		})

		if err == nil || attempt >= task.MaxAttempt {
			break
		}
	}

	updates := map[string]interface{}{"last_run": &startAt}
	switch {
	case err != nil:
		updates["status"] = models.ScheduledTaskStatusFailure
	case task.TaskType == models.ScheduledTaskTypeOneTime:
		updates["status"] = models.ScheduledTaskStatusDone
	default:
		nextDue := task.NextDue()
		// A recurring task whose rule yields no future date is finished;
		// keeping it active would make it fire on every tick.
		if nextDue.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	}
	db.Model(&task).Updates(updates)
}
