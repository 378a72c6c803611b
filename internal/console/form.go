package console

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/models"
)

// DeleteConfirmation is the question asked before an employee is deleted.
const DeleteConfirmation = "Are you sure you want to delete this employee?"

var (
	// ErrInvalidDraft is returned when the draft fails the form's own checks.
	// No request is issued in that case.
	ErrInvalidDraft = errors.New("invalid employee draft")
	// ErrFormClosed is returned by Submit when no form is open.
	ErrFormClosed = errors.New("employee form is not open")
	// ErrUnknownField is returned by SetField for a name the form does not have.
	ErrUnknownField = errors.New("unknown employee field")
)

// Confirmer answers a yes/no question put to the user.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Form is the modal draft. An empty TargetID means submit creates.
type Form struct {
	Open     bool
	TargetID string
	Draft    models.EmployeeDraft
}

// Editing reports whether submit updates an existing employee.
func (f Form) Editing() bool { return f.TargetID != "" }

// FormController owns the draft form and submits it.
type FormController struct {
	api      API
	validate *validator.Validate
	logger   *zap.Logger
	form     Form
}

// NewFormController builds a controller with a closed form.
func NewFormController(api API, validate *validator.Validate, logger *zap.Logger) *FormController {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormController{api: api, validate: validate, logger: logger}
}

// Form returns the current form.
func (c *FormController) Form() Form { return c.form }

// OpenCreate opens a blank draft.
func (c *FormController) OpenCreate() {
	c.form = Form{Open: true}
}

// OpenEdit opens a draft seeded from employee.
func (c *FormController) OpenEdit(employee models.Employee) {
	c.form = Form{Open: true, TargetID: employee.ID, Draft: employee.Draft()}
}

// SetDraft replaces the whole draft.
func (c *FormController) SetDraft(draft models.EmployeeDraft) {
	c.form.Draft = draft
}

// SetField sets one draft field by its JSON name.
func (c *FormController) SetField(name, value string) error {
	d := &c.form.Draft
	switch name {
	case "firstName":
		d.FirstName = value
	case "lastName":
		d.LastName = value
	case "email":
		d.Email = value
	case "department":
		d.Department = value
	case "position":
		d.Position = value
	case "hireDate":
		d.HireDate = value
	case "phone":
		d.Phone = value
	case "salary":
		salary, err := ParseSalary(value)
		if err != nil {
			return err
		}
		d.Salary = salary
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Cancel discards the draft and closes the form.
func (c *FormController) Cancel() {
	c.form = Form{}
}

// Submit creates or updates depending on the form's target. On success the
// form is closed and reset; on failure it stays open with the draft intact.
func (c *FormController) Submit(ctx context.Context) (*models.Employee, error) {
	if !c.form.Open {
		return nil, ErrFormClosed
	}
	draft := c.form.Draft.Normalize()
	if err := c.validate.Struct(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	var (
		saved *models.Employee
		err   error
	)
	if c.form.Editing() {
		saved, err = c.api.Update(ctx, c.form.TargetID, draft)
	} else {
		saved, err = c.api.Create(ctx, draft)
	}
	if err != nil {
		c.logger.Error("employee submit failed", zap.String("target_id", c.form.TargetID), zap.Error(err))
		return nil, err
	}
	c.form = Form{}
	return saved, nil
}

// Delete asks confirm before deleting id. It reports whether a delete was
// issued and succeeded; a declined confirmation issues no request.
func (c *FormController) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(DeleteConfirmation) {
		return false, nil
	}
	if err := c.api.Delete(ctx, id); err != nil {
		c.logger.Error("employee delete failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	return true, nil
}

// ParseSalary reads a salary typed into the form. Blank means zero; thousands
// separators and an "Rs" prefix are tolerated.
func ParseSalary(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "Rs"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, nil
	}
	salary, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(salary, 0) || math.IsNaN(salary) {
		return 0, fmt.Errorf("salary %q is not a number", value)
	}
	return salary, nil
}

var fieldLabels = map[string]string{
	"FirstName":  "First name",
	"LastName":   "Last name",
	"Email":      "Email",
	"Department": "Department",
	"Position":   "Position",
	"Salary":     "Salary",
	"HireDate":   "Hire date",
	"Phone":      "Phone",
}

// DraftProblems turns a Submit error into messages fit for the form. It
// returns nil when err carries no field failures.
func DraftProblems(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			problems = append(problems, label+" is required")
		case "email":
			problems = append(problems, label+" must be a valid email address")
		case "gte":
			problems = append(problems, label+" cannot be negative")
		case "datetime":
			problems = append(problems, label+" must look like 2024-01-31")
		case "max":
			problems = append(problems, label+" is too long")
		default:
			problems = append(problems, label+" is invalid")
		}
	}
	return problems
}
