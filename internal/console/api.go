// Package console holds the state behind the employee admin console: the
// displayed list, the active filter and the draft form of one browser session.
package console

import (
	"context"

	"github.com/noah-isme/employee-admin/internal/models"
)

// API is the part of the employee API the console drives. *client.Client
// satisfies it.
type API interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, draft models.EmployeeDraft) (*models.Employee, error)
	Update(ctx context.Context, id string, draft models.EmployeeDraft) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
	SearchByKeyword(ctx context.Context, text string) ([]models.Employee, error)
	ListByDepartment(ctx context.Context, name string) ([]models.Employee, error)
}

// Store is the ordered list of employees currently displayed. It is replaced
// wholesale, never patched.
type Store struct {
	employees []models.Employee
}

// Replace swaps the displayed list for list.
func (s *Store) Replace(list []models.Employee) {
	s.employees = append(make([]models.Employee, 0, len(list)), list...)
}

// Employees returns a copy of the displayed list.
func (s *Store) Employees() []models.Employee {
	return append([]models.Employee(nil), s.employees...)
}

// Len reports how many employees are displayed.
func (s *Store) Len() int { return len(s.employees) }

// Find returns the displayed employee with id.
func (s *Store) Find(id string) (models.Employee, bool) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}
