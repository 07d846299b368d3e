// Package assignment wires the ranking core to the store: it fetches the
// task, disaster, and candidate snapshots, runs the ranker, and persists the
// outcome. Ranking itself never touches I/O; every fetch happens before it
// and every write after.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/reliefops/volunteer-match/internal/models"
	"github.com/reliefops/volunteer-match/internal/notify"
	"github.com/reliefops/volunteer-match/internal/ranking"
	"github.com/reliefops/volunteer-match/internal/repository"
)

// ErrNoVolunteers is returned when auto-assignment finds no available
// candidates.
var ErrNoVolunteers = errors.New("no available volunteers")

// reliabilityBonus is added to a volunteer's stored reliability score when
// they complete an assignment.
const reliabilityBonus = 5

// Store is the slice of persistence the assignment workflow needs.
type Store interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetDisaster(ctx context.Context, id string) (*models.Disaster, error)
	ListVolunteers(ctx context.Context, opts repository.VolunteerFilter) ([]models.Volunteer, error)
	GetVolunteerByProfile(ctx context.Context, profileID string) (*models.Volunteer, error)
	AddAssignments(ctx context.Context, assignments []models.Assignment) error
	SetAssignmentStatus(ctx context.Context, id, volunteerID, status string) (*models.Assignment, error)
	IncrementAssigned(ctx context.Context, volunteerID string) error
	RecordCompletion(ctx context.Context, volunteerID string, delta float64) error
}

type Service struct {
	store    Store
	ranker   *ranking.Ranker
	notifier *notify.Dispatcher
}

func NewService(store Store, ranker *ranking.Ranker, notifier *notify.Dispatcher) *Service {
	return &Service{
		store:    store,
		ranker:   ranker,
		notifier: notifier,
	}
}

// RankResult is the review payload for a ranking request.
type RankResult struct {
	TaskID          string                    `json:"task_id"`
	TaskTitle       string                    `json:"task_title"`
	DisasterName    string                    `json:"disaster_name"`
	Urgency         models.Urgency            `json:"urgency"`
	Ranked          []ranking.RankedVolunteer `json:"ranked_volunteers"`
	TotalVolunteers int                       `json:"total_volunteers"`
}

// RankForTask ranks every registered volunteer against the task and returns
// the top topN for human review. Nothing is persisted.
func (s *Service) RankForTask(ctx context.Context, taskID string, topN int) (*RankResult, error) {
	task, disaster, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	volunteers, err := s.store.ListVolunteers(ctx, repository.VolunteerFilter{})
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}

	return &RankResult{
		TaskID:          task.ID,
		TaskTitle:       task.Title,
		DisasterName:    disaster.Name,
		Urgency:         disaster.Urgency,
		Ranked:          s.ranker.Top(volunteers, task, disaster, topN, nil),
		TotalVolunteers: len(volunteers),
	}, nil
}

// AutoAssignResult reports what auto-assignment persisted.
type AutoAssignResult struct {
	TaskID      string                    `json:"task_id"`
	Assigned    []ranking.RankedVolunteer `json:"assigned_volunteers"`
	Assignments []models.Assignment       `json:"assignments"`
}

// AutoAssign ranks the currently available volunteers and persists the top
// count as pending assignments carrying their final scores. Workload counter
// increments and the update bulletin are best-effort.
func (s *Service) AutoAssign(ctx context.Context, taskID string, count int, actorID string) (*AutoAssignResult, error) {
	task, disaster, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	available := models.Available
	volunteers, err := s.store.ListVolunteers(ctx, repository.VolunteerFilter{Availability: &available})
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	if len(volunteers) == 0 {
		return nil, ErrNoVolunteers
	}

	top := s.ranker.Top(volunteers, task, disaster, count, nil)

	now := time.Now().UTC()
	assignments := make([]models.Assignment, 0, len(top))
	for _, rv := range top {
		assignments = append(assignments, models.Assignment{
			ID:          uuid.NewString(),
			TaskID:      task.ID,
			VolunteerID: rv.VolunteerID,
			Status:      models.AssignmentPending,
			MatchScore:  rv.Scores.Final,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.store.AddAssignments(ctx, assignments); err != nil {
		return nil, fmt.Errorf("persist assignments: %w", err)
	}

	s.bumpWorkloads(ctx, assignments)
	if s.notifier != nil {
		s.notifier.VolunteersAssigned(task, len(assignments), actorID)
	}

	return &AutoAssignResult{
		TaskID:      task.ID,
		Assigned:    top,
		Assignments: assignments,
	}, nil
}

// Assign persists manual assignments picked by an admin, with no score
// attached.
func (s *Service) Assign(ctx context.Context, taskID string, volunteerIDs []string, actorID string) ([]models.Assignment, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	assignments := make([]models.Assignment, 0, len(volunteerIDs))
	for _, id := range volunteerIDs {
		assignments = append(assignments, models.Assignment{
			ID:          uuid.NewString(),
			TaskID:      task.ID,
			VolunteerID: id,
			Status:      models.AssignmentPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.store.AddAssignments(ctx, assignments); err != nil {
		return nil, fmt.Errorf("persist assignments: %w", err)
	}

	s.bumpWorkloads(ctx, assignments)
	if s.notifier != nil {
		s.notifier.VolunteersAssigned(task, len(assignments), actorID)
	}

	return assignments, nil
}

// UpdateStatus moves one of the caller's own assignments to accepted,
// declined, or completed. Completion bumps the volunteer's completed-task
// counter and reliability score, best-effort.
func (s *Service) UpdateStatus(ctx context.Context, assignmentID, profileID, status string) (*models.Assignment, error) {
	volunteer, err := s.store.GetVolunteerByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	a, err := s.store.SetAssignmentStatus(ctx, assignmentID, volunteer.ID, status)
	if err != nil {
		return nil, err
	}

	if status == models.AssignmentCompleted {
		if err := s.store.RecordCompletion(ctx, volunteer.ID, reliabilityBonus); err != nil {
			slog.Warn("failed to record completion", "volunteer", volunteer.ID, "error", err)
		}
	}

	return a, nil
}

func (s *Service) loadTask(ctx context.Context, taskID string) (*models.Task, *models.Disaster, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	disaster, err := s.store.GetDisaster(ctx, task.DisasterID)
	if err != nil {
		return nil, nil, fmt.Errorf("disaster for task %s: %w", taskID, err)
	}
	return task, disaster, nil
}

// Counter increments are non-fatal: the assignment record is the source of
// truth.
func (s *Service) bumpWorkloads(ctx context.Context, assignments []models.Assignment) {
	for _, a := range assignments {
		if err := s.store.IncrementAssigned(ctx, a.VolunteerID); err != nil {
			slog.Warn("failed to increment workload counter", "volunteer", a.VolunteerID, "error", err)
		}
	}
}
