package project

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	projecterrors "go-workforce/internal/project/errors"
	"go-workforce/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	dateLayout              = "2006-01-02"
	activeProjectsKeyPrefix = "projects:active:"
	activeProjectsCacheTTL  = 10 * time.Minute
)

// ActiveProjectsCacheKey is the cache key of the active project list for the given day.
func ActiveProjectsCacheKey(day time.Time) string {
	return activeProjectsKeyPrefix + day.Format(dateLayout)
}

//go:generate mockgen -source=project_service.go -destination=mock/project_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error)
	GetAll(ctx context.Context) ([]ProjectResponse, error)
	GetByID(ctx context.Context, id uint) (ProjectDetailResponse, error)
	Update(ctx context.Context, id uint, req UpdateProjectRequest) (ProjectResponse, error)
	Delete(ctx context.Context, id uint) error
	GetActive(ctx context.Context) ([]ProjectResponse, error)
	AssignEmployees(ctx context.Context, id uint, employeeIDs []uint) (AssignEmployeesResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("project.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("project.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    time.Now,
		logger: l,
	}
}

func (s *service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, projecterrors.ErrInvalidDate
	}
	return &t, nil
}

func applyFields(p *Project, name, description string, start, end *string) error {
	startDate, err := parseDate(start)
	if err != nil {
		return err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return projecterrors.ErrInvalidDateRange
	}

	p.Name = name
	p.Description = description
	p.StartDate = startDate
	p.EndDate = endDate
	return nil
}

func (s *service) Create(ctx context.Context, req CreateProjectRequest) (ProjectResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create project requested", zap.String("name", req.Name))

	p := &Project{}
	if err := applyFields(p, req.Name, req.Description, req.StartDate, req.EndDate); err != nil {
		return ProjectResponse{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, p)
	})
	if err != nil {
		log.Error("create project persist failed", zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	s.invalidateActive(ctx)
	log.Info("create project success", zap.Uint("project_id", p.ID))

	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]ProjectResponse, error) {
	projects, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all projects failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(projects), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (ProjectDetailResponse, error) {
	p, err := s.repo.FindByIDWithEmployees(ctx, id)
	if err != nil {
		return ProjectDetailResponse{}, mapRepositoryError(err)
	}

	return mapToDetailResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateProjectRequest) (ProjectResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update project requested", zap.Uint("project_id", id))

	var p *Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		existing, err := qtx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applyFields(existing, req.Name, req.Description, req.StartDate, req.EndDate); err != nil {
			return err
		}
		if err := qtx.Update(ctx, existing); err != nil {
			return err
		}

		p = existing
		return nil
	})
	if err != nil {
		log.Warn("update project failed", zap.Uint("project_id", id), zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	s.invalidateActive(ctx)
	log.Info("update project success", zap.Uint("project_id", id))

	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("delete project requested", zap.Uint("project_id", id))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		log.Warn("delete project failed", zap.Uint("project_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateActive(ctx)
	log.Info("delete project success", zap.Uint("project_id", id))
	return nil
}

// GetActive lists projects whose end date is strictly after today.
func (s *service) GetActive(ctx context.Context) ([]ProjectResponse, error) {
	today := s.today()
	cacheKey := ActiveProjectsCacheKey(today)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []ProjectResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		// shared by every waiter on the key, so detached from the caller
		ctx := context.WithoutCancel(ctx)
		projects, err := s.repo.FindByEndDateAfter(ctx, today)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(projects)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, activeProjectsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache active projects failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("get active projects failed", zap.Error(err))
		return nil, err
	}

	return v.([]ProjectResponse), nil
}

// AssignEmployees replaces the member set of a project with employeeIDs.
// Unknown employee ids are skipped and reported back.
func (s *service) AssignEmployees(ctx context.Context, id uint, employeeIDs []uint) (AssignEmployeesResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)
	log.Debug("assign employees requested", zap.Uint("project_id", id), zap.Int("requested", len(employeeIDs)))

	requested := dedupeIDs(employeeIDs)

	var (
		target  []uint
		ignored []uint
		added   []uint
		removed []uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if _, err := qtx.FindByID(ctx, id); err != nil {
			return err
		}

		existing, err := qtx.FindExistingEmployeeIDs(ctx, requested)
		if err != nil {
			return err
		}
		target = dedupeIDs(existing)
		ignored = missingIDs(requested, target)

		current, err := qtx.FindMemberIDs(ctx, id)
		if err != nil {
			return err
		}

		added, removed = diffMembers(current, target)

		if err := qtx.RemoveMembers(ctx, id, removed); err != nil {
			return err
		}
		if err := qtx.AddMembers(ctx, id, added); err != nil {
			return err
		}

		if s.outbox != nil {
			event, err := kafka.NewOutboxEvent(rid, "project", strconv.FormatUint(uint64(id), 10),
				events.ProjectMembersReplaced, events.ProjectMembershipTopic,
				events.ProjectMembersReplacedEvent{
					EventType:   events.ProjectMembersReplaced,
					RequestID:   rid,
					ProjectID:   id,
					EmployeeIDs: target,
					Added:       added,
					Removed:     removed,
					OccurredAt:  time.Now().UTC(),
				})
			if err != nil {
				return err
			}
			if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("assign employees failed", zap.Uint("project_id", id), zap.Error(err))
		return AssignEmployeesResponse{}, mapRepositoryError(err)
	}

	p, err := s.repo.FindByIDWithEmployees(ctx, id)
	if err != nil {
		return AssignEmployeesResponse{}, mapRepositoryError(err)
	}

	if len(ignored) > 0 {
		log.Warn("assign employees ignored unknown ids",
			zap.Uint("project_id", id),
			zap.Uints("employee_ids", ignored),
		)
	}
	log.Info("assign employees success",
		zap.Uint("project_id", id),
		zap.Int("members", len(target)),
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)),
	)

	return AssignEmployeesResponse{
		ProjectDetailResponse: mapToDetailResponse(*p),
		IgnoredEmployeeIDs:    ignored,
	}, nil
}

func (s *service) invalidateActive(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	cacheKey := ActiveProjectsCacheKey(s.today())
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate active projects cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

func mapToResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   formatDate(p.StartDate),
		EndDate:     formatDate(p.EndDate),
	}
}

func mapToDetailResponse(p Project) ProjectDetailResponse {
	employees := make([]ProjectEmployeeResponse, len(p.Employees))
	for i, e := range p.Employees {
		employees[i] = ProjectEmployeeResponse{
			ID:        e.ID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Email:     e.Email,
		}
	}
	return ProjectDetailResponse{
		ProjectResponse: mapToResponse(p),
		Employees:       employees,
	}
}

func mapToListResponse(projects []Project) []ProjectResponse {
	res := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		res[i] = mapToResponse(p)
	}
	return res
}
