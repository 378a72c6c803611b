package export

import (
	"strconv"

	"github.com/noah-isme/employee-admin/internal/models"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// EmployeeHeaders are the export columns in display order.
var EmployeeHeaders = []string{"ID", "First Name", "Last Name", "Email", "Department", "Position", "Salary", "Hire Date", "Phone"}

// SalaryFormatter renders a salary cell.
type SalaryFormatter func(float64) string

// PlainSalary keeps salaries machine readable.
func PlainSalary(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// EmployeeDataset lays employees out in EmployeeHeaders order.
func EmployeeDataset(employees []models.Employee, salary SalaryFormatter) Dataset {
	if salary == nil {
		salary = PlainSalary
	}
	rows := make([]map[string]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, map[string]string{
			"ID":         e.ID,
			"First Name": e.FirstName,
			"Last Name":  e.LastName,
			"Email":      e.Email,
			"Department": e.Department,
			"Position":   e.Position,
			"Salary":     salary(e.Salary),
			"Hire Date":  e.HireDate,
			"Phone":      e.Phone,
		})
	}
	return Dataset{Headers: EmployeeHeaders, Rows: rows}
}
