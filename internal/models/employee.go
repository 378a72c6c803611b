package models

import (
	"strings"
	"time"
)

// HireDateLayout is the wire and form format of Employee.HireDate.
const HireDateLayout = "2006-01-02"

// Employee is one persisted employee record. ID is assigned by the API on
// create and never changes afterwards.
type Employee struct {
	ID         string    `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"firstName"`
	LastName   string    `db:"last_name" json:"lastName"`
	Email      string    `db:"email" json:"email"`
	Department string    `db:"department" json:"department"`
	Position   string    `db:"position" json:"position"`
	Salary     float64   `db:"salary" json:"salary"`
	HireDate   string    `db:"hire_date" json:"hireDate"`
	Phone      string    `db:"phone" json:"phone"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	UpdatedAt  time.Time `db:"updated_at" json:"-"`
}

// EmployeeDraft carries the editable fields of an employee. It is the body of
// create and update requests.
type EmployeeDraft struct {
	FirstName  string  `json:"firstName" validate:"required,max=100"`
	LastName   string  `json:"lastName" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Department string  `json:"department" validate:"max=100"`
	Position   string  `json:"position" validate:"max=100"`
	Salary     float64 `json:"salary" validate:"gte=0"`
	HireDate   string  `json:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	Phone      string  `json:"phone" validate:"max=50"`
}

// Draft returns the editable fields of e.
func (e Employee) Draft() EmployeeDraft {
	return EmployeeDraft{
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
		Salary:     e.Salary,
		HireDate:   e.HireDate,
		Phone:      e.Phone,
	}
}

// FullName joins first and last name the way listings display it.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Normalize trims surrounding whitespace from every text field.
func (d EmployeeDraft) Normalize() EmployeeDraft {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Department = strings.TrimSpace(d.Department)
	d.Position = strings.TrimSpace(d.Position)
	d.HireDate = strings.TrimSpace(d.HireDate)
	d.Phone = strings.TrimSpace(d.Phone)
	return d
}

// ApplyTo overwrites every editable field of e with the draft's values.
func (d EmployeeDraft) ApplyTo(e *Employee) {
	e.FirstName = d.FirstName
	e.LastName = d.LastName
	e.Email = d.Email
	e.Department = d.Department
	e.Position = d.Position
	e.Salary = d.Salary
	e.HireDate = d.HireDate
	e.Phone = d.Phone
}

// EmployeeEventType names a lifecycle transition of an employee record.
type EmployeeEventType string

const (
	EmployeeCreated EmployeeEventType = "employee.created"
	EmployeeUpdated EmployeeEventType = "employee.updated"
	EmployeeDeleted EmployeeEventType = "employee.deleted"
)

// EmployeeEvent is published after a successful write.
type EmployeeEvent struct {
	EventType  EmployeeEventType `json:"event_type"`
	EmployeeID string            `json:"employee_id"`
	Employee   *Employee         `json:"employee,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
