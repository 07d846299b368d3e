package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/repository"
	"github.com/reliefops/volunteer-match/internal/worker"
)

// Dispatcher persists updates and pushes them to stream subscribers off the
// request path. Publication is best-effort: failures are logged, never
// surfaced to the request that triggered them.
type Dispatcher struct {
	repo        repository.UpdateRepository
	broadcaster *Broadcaster
	pool        *worker.Pool
}

func NewDispatcher(repo repository.UpdateRepository, broadcaster *Broadcaster, workers, bufferSize int) *Dispatcher {
	d := &Dispatcher{
		repo:        repo,
		broadcaster: broadcaster,
	}
	d.pool = worker.NewPool(workers, bufferSize, d.process)
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.pool.Start(ctx)
}

func (d *Dispatcher) Stop() {
	d.pool.Stop()
	slog.Info("notify dispatcher stopped")
}

// Publish queues an update for persistence and broadcast. ID and timestamp
// are filled in if the caller left them empty.
func (d *Dispatcher) Publish(u *models.Update) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Category == "" {
		u.Category = "General"
	}
	d.pool.Submit(u)
}

// TaskCreated publishes the bulletin that accompanies a new task.
func (d *Dispatcher) TaskCreated(task *models.Task, disaster *models.Disaster, createdBy string) {
	message := fmt.Sprintf("A new %s priority task has been created", task.Priority)
	if disaster != nil {
		message += fmt.Sprintf(" for %s", disaster.Name)
	}
	if task.Description != "" {
		message += ": " + task.Description
	} else {
		message += ": " + task.Title
	}

	d.Publish(&models.Update{
		Title:      "New Task Created: " + task.Title,
		Message:    message,
		Priority:   task.Priority,
		Category:   "Task Assignment",
		DisasterID: task.DisasterID,
		CreatedBy:  createdBy,
	})
}

// VolunteersAssigned publishes the bulletin that accompanies an assignment
// batch.
func (d *Dispatcher) VolunteersAssigned(task *models.Task, count int, createdBy string) {
	d.Publish(&models.Update{
		Title:      "Volunteers Assigned: " + task.Title,
		Message:    fmt.Sprintf("%d volunteer(s) assigned to %q", count, task.Title),
		Priority:   task.Priority,
		Category:   "Task Assignment",
		DisasterID: task.DisasterID,
		CreatedBy:  createdBy,
	})
}

func (d *Dispatcher) process(ctx context.Context, job worker.Job) error {
	u := job.(*models.Update)

	if err := d.repo.AddUpdate(ctx, u); err != nil {
		slog.Warn("failed to persist update", "id", u.ID, "error", err)
		return err
	}

	if d.broadcaster != nil {
		d.broadcaster.Broadcast(u)
	}

	slog.Debug("published update", "id", u.ID, "category", u.Category)
	return nil
}
