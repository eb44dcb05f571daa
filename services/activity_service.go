package services

import (
	"context"

	"github.com/taskdesk/dto"
	"github.com/taskdesk/repositories"
	"github.com/taskdesk/utils"
	"gorm.io/gorm"
)

// ActivityService reads the activity log
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates a new activity service instance
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// ListActivities returns a page of activity entries, newest first
func (s *ActivityService) ListActivities(ctx context.Context, filter dto.ActivityFilter) (dto.ActivityListResponse, error) {
	filter.Page, filter.PageSize = utils.NormalizePage(filter.Page, filter.PageSize)

	entries, totalCount, err := repositories.NewActivityRepository(s.db.WithContext(ctx)).FindWithPagination(filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	return dto.ActivityListResponse{
		Activities: entries,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: utils.TotalPages(totalCount, filter.PageSize),
	}, nil
}
