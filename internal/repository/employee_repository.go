package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/employee-admin/internal/models"
)

const employeeColumns = `id, first_name, last_name, email, department, position, salary,
	COALESCE(to_char(hire_date, 'YYYY-MM-DD'), '') AS hire_date, phone, created_at, updated_at`

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// EmployeeRepository manages persistence for employees.
type EmployeeRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// WithMetrics records query latency on the given observer.
func (r *EmployeeRepository) WithMetrics(m queryObserver) *EmployeeRepository {
	r.metrics = m
	return r
}

func (r *EmployeeRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// List returns every employee ordered by creation time.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	defer r.observe("employees_list", time.Now())

	query := "SELECT " + employeeColumns + " FROM employees ORDER BY created_at ASC, id ASC"
	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// Search matches keyword case-insensitively as a substring of first name,
// last name or email.
func (r *EmployeeRepository) Search(ctx context.Context, keyword string) ([]models.Employee, error) {
	defer r.observe("employees_search", time.Now())

	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	query := "SELECT " + employeeColumns + ` FROM employees
		WHERE LOWER(first_name) LIKE $1 ESCAPE '\' OR LOWER(last_name) LIKE $1 ESCAPE '\' OR LOWER(email) LIKE $1 ESCAPE '\'
		ORDER BY created_at ASC, id ASC`
	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, pattern); err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return employees, nil
}

// ListByDepartment returns employees whose department equals name, ignoring case.
func (r *EmployeeRepository) ListByDepartment(ctx context.Context, name string) ([]models.Employee, error) {
	defer r.observe("employees_by_department", time.Now())

	query := "SELECT " + employeeColumns + " FROM employees WHERE LOWER(department) = LOWER($1) ORDER BY created_at ASC, id ASC"
	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, query, name); err != nil {
		return nil, fmt.Errorf("list employees by department: %w", err)
	}
	return employees, nil
}

// FindByID fetches an employee by ID. It returns sql.ErrNoRows when absent.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	defer r.observe("employees_find", time.Now())

	query := "SELECT " + employeeColumns + " FROM employees WHERE id = $1"
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ExistsByEmail checks if another employee uses the same email.
func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return true, nil
}

// Create inserts a new employee, assigning its ID.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	defer r.observe("employees_create", time.Now())

	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (id, first_name, last_name, email, department, position, salary, hire_date, phone, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :department, :position, :salary, CAST(NULLIF(:hire_date, '') AS DATE), :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update replaces the editable fields of an existing employee. It returns
// sql.ErrNoRows when no row has the employee's ID.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	defer r.observe("employees_update", time.Now())

	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name, email = :email, department = :department,
		position = :position, salary = :salary, hire_date = CAST(NULLIF(:hire_date, '') AS DATE), phone = :phone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an employee. It returns sql.ErrNoRows when nothing was deleted.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("employees_delete", time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
