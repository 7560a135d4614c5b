package department

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go-workforce/internal/events"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	DepartmentListCacheKey = "departments:all"
	departmentListCacheTTL = 30 * time.Minute
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id uint) (DepartmentResponse, error)
	Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
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
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create department requested", zap.String("name", req.Name))

	dept := &Department{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, dept)
	})
	if err != nil {
		log.Error("create department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	s.invalidateList(ctx)
	log.Info("create department success", zap.Uint("department_id", dept.ID))

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, DepartmentListCacheKey).Result(); err == nil {
			var resp []DepartmentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(DepartmentListCacheKey, func() (interface{}, error) {
		// shared by every waiter on the key, so detached from the caller
		ctx := context.WithoutCancel(ctx)
		depts, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(depts)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, DepartmentListCacheKey, jsonData, departmentListCacheTTL).Err(); err != nil {
					s.logger.Warn("cache department list failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("get all departments failed", zap.Error(err))
		return nil, err
	}

	return v.([]DepartmentResponse), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (DepartmentResponse, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update department requested", zap.Uint("department_id", id))

	var dept *Department
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		existing, err := qtx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		existing.Name = req.Name
		existing.Description = req.Description
		if err := qtx.Update(ctx, existing); err != nil {
			return err
		}

		dept = existing
		return nil
	})
	if err != nil {
		log.Warn("update department failed", zap.Uint("department_id", id), zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	s.invalidateList(ctx)
	log.Info("update department success", zap.Uint("department_id", id))

	return mapToResponse(*dept), nil
}

// Delete removes the department together with its employees and their
// project memberships.
func (s *service) Delete(ctx context.Context, id uint) error {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)
	log.Debug("delete department requested", zap.Uint("department_id", id))

	var removed []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if _, err := qtx.FindByID(ctx, id); err != nil {
			return err
		}

		employeeIDs, err := qtx.FindEmployeeIDs(ctx, id)
		if err != nil {
			return err
		}

		if err := qtx.DeleteEmployees(ctx, employeeIDs); err != nil {
			return err
		}

		if err := qtx.Delete(ctx, id); err != nil {
			return err
		}
		removed = employeeIDs

		if s.outbox == nil {
			return nil
		}
		event, err := kafka.NewOutboxEvent(rid, "department", strconv.FormatUint(uint64(id), 10),
			events.DepartmentDeleted, events.DepartmentLifecycleTopic,
			events.DepartmentDeletedEvent{
				EventType:          events.DepartmentDeleted,
				RequestID:          rid,
				DepartmentID:       id,
				RemovedEmployeeIDs: employeeIDs,
				OccurredAt:         time.Now().UTC(),
			})
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, event)
	})
	if err != nil {
		log.Warn("delete department failed", zap.Uint("department_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateList(ctx)
	log.Info("delete department success",
		zap.Uint("department_id", id),
		zap.Int("removed_employees", len(removed)),
	)
	return nil
}

func (s *service) invalidateList(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, DepartmentListCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate department list cache",
			zap.Error(err),
			zap.String("key", DepartmentListCacheKey),
		)
	}
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		CreatedAt:   dept.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
