package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/models"
	appErrors "github.com/noah-isme/employee-admin/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
	Search(ctx context.Context, keyword string) ([]models.Employee, error)
	ListByDepartment(ctx context.Context, name string) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

// EmployeeService handles employee use-cases behind the REST API.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	cache     *CacheService
	events    EventPublisher
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// EmployeeServiceOption customises an EmployeeService.
type EmployeeServiceOption func(*EmployeeService)

// WithEmployeeCache enables read-through caching.
func WithEmployeeCache(cache *CacheService) EmployeeServiceOption {
	return func(s *EmployeeService) { s.cache = cache }
}

// WithEventPublisher publishes lifecycle events after every write.
func WithEventPublisher(p EventPublisher) EmployeeServiceOption {
	return func(s *EmployeeService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithServiceMetrics counts published events.
func WithServiceMetrics(m *MetricsService) EmployeeServiceOption {
	return func(s *EmployeeService) { s.metrics = m }
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger, opts ...EmployeeServiceOption) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EmployeeService{
		repo:      repo,
		validator: validate,
		events:    NoopEventPublisher(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	return s.cachedList(ctx, employeeListKey(), func() ([]models.Employee, error) {
		return s.repo.List(ctx)
	}, "failed to list employees")
}

// Search returns employees whose first name, last name or email contains keyword.
func (s *EmployeeService) Search(ctx context.Context, keyword string) ([]models.Employee, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "keyword is required")
	}
	return s.cachedList(ctx, employeeSearchKey(keyword), func() ([]models.Employee, error) {
		return s.repo.Search(ctx, keyword)
	}, "failed to search employees")
}

// ListByDepartment returns employees of the named department, ignoring case.
func (s *EmployeeService) ListByDepartment(ctx context.Context, name string) ([]models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	return s.cachedList(ctx, employeeDepartmentKey(name), func() ([]models.Employee, error) {
		return s.repo.ListByDepartment(ctx, name)
	}, "failed to list employees by department")
}

func (s *EmployeeService) cachedList(ctx context.Context, key string, load func() ([]models.Employee, error), failure string) ([]models.Employee, error) {
	var cached []models.Employee
	if s.cache.Get(ctx, key, &cached) {
		if cached == nil {
			cached = []models.Employee{}
		}
		return cached, nil
	}
	employees, err := load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failure)
	}
	s.cache.Set(ctx, key, employees, 0)
	return employees, nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(id)
	}
	var cached models.Employee
	if s.cache.Get(ctx, employeeKey(id), &cached) {
		return &cached, nil
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	s.cache.Set(ctx, employeeKey(id), employee, 0)
	return employee, nil
}

// Create registers a new employee.
func (s *EmployeeService) Create(ctx context.Context, draft models.EmployeeDraft) (*models.Employee, error) {
	draft = draft.Normalize()
	if err := s.validate(ctx, draft, ""); err != nil {
		return nil, err
	}
	employee := &models.Employee{}
	draft.ApplyTo(employee)
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.afterWrite(ctx, models.EmployeeCreated, employee.ID, employee)
	return employee, nil
}

// Update replaces every editable field of an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id string, draft models.EmployeeDraft) (*models.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(id)
	}
	draft = draft.Normalize()
	if err := s.validate(ctx, draft, id); err != nil {
		return nil, err
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	draft.ApplyTo(employee)
	if err := s.repo.Update(ctx, employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	s.afterWrite(ctx, models.EmployeeUpdated, employee.ID, employee)
	return employee, nil
}

// Delete removes an employee.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	s.afterWrite(ctx, models.EmployeeDeleted, id, nil)
	return nil
}

func (s *EmployeeService) validate(ctx context.Context, draft models.EmployeeDraft, excludeID string) error {
	if err := s.validator.Struct(draft); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	exists, err := s.repo.ExistsByEmail(ctx, draft.Email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Employee with email %s already exists", draft.Email))
	}
	return nil
}

func (s *EmployeeService) afterWrite(ctx context.Context, eventType models.EmployeeEventType, id string, employee *models.Employee) {
	s.cache.Invalidate(ctx, employeeCachePattern)

	var snapshot *models.Employee
	if employee != nil {
		copied := *employee
		snapshot = &copied
	}
	err := s.events.Publish(ctx, models.EmployeeEvent{
		EventType:  eventType,
		EmployeeID: id,
		Employee:   snapshot,
		OccurredAt: s.now(),
	})
	s.metrics.RecordEvent(string(eventType), err)
	if err != nil {
		s.logger.Warn("employee event not published", zap.String("event_type", string(eventType)), zap.String("employee_id", id), zap.Error(err))
	}
}

func notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "Employee not found with id: "+id)
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid employee payload"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return "invalid employee payload: " + strings.Join(parts, ", ")
}
