package repository

import (
	"context"
	"errors"

	"github.com/reliefops/volunteer-match/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

type VolunteerFilter struct {
	Availability *models.Availability
}

type TaskFilter struct {
	DisasterID *string
	Status     *string
}

type DisasterFilter struct {
	Status *string
}

type UpdateFilter struct {
	Priority *string
	Category *string
}

type VolunteerRepository interface {
	AddVolunteer(ctx context.Context, v *models.Volunteer) error
	UpdateVolunteer(ctx context.Context, v *models.Volunteer) error
	GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error)
	GetVolunteerByProfile(ctx context.Context, profileID string) (*models.Volunteer, error)
	ListVolunteers(ctx context.Context, opts VolunteerFilter) ([]models.Volunteer, error)
	SetAvailability(ctx context.Context, profileID string, a models.Availability) (*models.Volunteer, error)
	// IncrementAssigned bumps the volunteer's workload counter. Callers treat
	// failures as non-fatal.
	IncrementAssigned(ctx context.Context, volunteerID string) error
	// RecordCompletion bumps the completed-task counter and shifts the stored
	// reliability score by delta.
	RecordCompletion(ctx context.Context, volunteerID string, delta float64) error
}

type TaskRepository interface {
	AddTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, opts TaskFilter) ([]models.Task, error)
	SetTaskStatus(ctx context.Context, id, status string) (*models.Task, error)
}

type DisasterRepository interface {
	AddDisaster(ctx context.Context, d *models.Disaster) error
	GetDisaster(ctx context.Context, id string) (*models.Disaster, error)
	ListDisasters(ctx context.Context, opts DisasterFilter) ([]models.Disaster, error)
	SetDisasterStatus(ctx context.Context, id, status string) (*models.Disaster, error)
	DeleteDisaster(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	AddAssignments(ctx context.Context, assignments []models.Assignment) error
	ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]models.Assignment, error)
	// SetAssignmentStatus updates the assignment only if it belongs to
	// volunteerID, returning ErrNotFound otherwise.
	SetAssignmentStatus(ctx context.Context, id, volunteerID, status string) (*models.Assignment, error)
}

type UpdateRepository interface {
	AddUpdate(ctx context.Context, u *models.Update) error
	ListUpdates(ctx context.Context, opts UpdateFilter) ([]models.Update, error)
	DeleteUpdate(ctx context.Context, id string) error
}

type UserRepository interface {
	AddUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// Store is everything the service needs from persistence.
type Store interface {
	VolunteerRepository
	TaskRepository
	DisasterRepository
	AssignmentRepository
	UpdateRepository
	UserRepository
}
