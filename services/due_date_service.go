package services

import (
	"context"
	"time"

	"github.com/taskdesk/models"
	"github.com/taskdesk/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DueDateService expires overdue projects and reminds managers of upcoming due dates
type DueDateService struct {
	db          *gorm.DB
	notifier    Notifier
	log         *zap.Logger
	dueSoonDays int
	now         Clock
}

// NewDueDateService creates a new due date service instance
func NewDueDateService(db *gorm.DB, notifier Notifier, log *zap.Logger, dueSoonDays int) *DueDateService {
	return &DueDateService{
		db:          db,
		notifier:    notifier,
		log:         log,
		dueSoonDays: dueSoonDays,
		now:         DefaultClock,
	}
}

// WithClock replaces the time source
func (s *DueDateService) WithClock(clock Clock) *DueDateService {
	s.now = clock
	return s
}

// ExpireOverdue flips every open or pending project whose due date has passed
// to expired. Managers get one notice per project and admins one report.
func (s *DueDateService) ExpireOverdue(ctx context.Context) ([]models.Project, error) {
	today := startOfDay(s.now())

	var expired []models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := repositories.NewProjectRepository(tx)

		var err error
		expired, err = projects.FindOverdue(today)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]string, 0, len(expired))
		for i := range expired {
			ids = append(ids, expired[i].ID)
			expired[i].Status = models.StatusExpired
		}
		if _, err := projects.MarkExpired(ids); err != nil {
			return err
		}

		for _, project := range expired {
			if err := recordActivity(tx, SystemActor, "project.expired", "project", project.ID, map[string]interface{}{
				"dueDate": time.Time(project.DueDate).Format(time.DateOnly),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(expired) == 0 {
		return expired, err
	}

	s.log.Info("expired overdue projects", zap.Int("count", len(expired)))

	users := repositories.NewUserRepository(s.db.WithContext(ctx))
	managers, err := s.managersOf(users, expired)
	if err != nil {
		s.log.Warn("failed to load project managers", zap.Error(err))
	}
	for i := range expired {
		project := expired[i]
		if project.ManagerID == nil {
			continue
		}
		if manager, ok := managers[*project.ManagerID]; ok {
			s.notifier.Notify(manager, Event{Type: EventProjectExpired, Project: &project})
		}
	}

	admins, err := users.FindByRole(models.RoleAdmin)
	if err != nil {
		s.log.Warn("failed to load admins for expiration report", zap.Error(err))
		return expired, nil
	}
	for _, admin := range admins {
		s.notifier.Notify(admin, Event{Type: EventExpirationReport, Projects: expired})
	}
	return expired, nil
}

// RemindDueSoon notifies the managers of projects due exactly dueSoonDays from today
func (s *DueDateService) RemindDueSoon(ctx context.Context) ([]models.Project, error) {
	day := startOfDay(s.now()).AddDate(0, 0, s.dueSoonDays)

	db := s.db.WithContext(ctx)
	due, err := repositories.NewProjectRepository(db).FindDueBetween(day, day)
	if err != nil {
		return nil, err
	}

	managers, err := s.managersOf(repositories.NewUserRepository(db), due)
	if err != nil {
		return due, err
	}

	sent := 0
	for i := range due {
		project := due[i]
		if project.ManagerID == nil {
			continue
		}
		if manager, ok := managers[*project.ManagerID]; ok {
			s.notifier.Notify(manager, Event{Type: EventProjectDueSoon, Project: &project})
			sent++
		}
	}
	if sent > 0 {
		s.log.Info("due date reminders queued", zap.Int("count", sent))
	}
	return due, nil
}

func (s *DueDateService) managersOf(users *repositories.UserRepository, projects []models.Project) (map[string]models.User, error) {
	ids := make([]string, 0, len(projects))
	for _, project := range projects {
		if project.ManagerID != nil {
			ids = append(ids, *project.ManagerID)
		}
	}

	found, err := users.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(found))
	for _, user := range found {
		byID[user.ID] = user
	}
	return byID, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
