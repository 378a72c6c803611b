package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraftRoundTripThroughEmployee(t *testing.T) {
	draft := EmployeeDraft{
		FirstName:  "Asha",
		LastName:   "Rao",
		Email:      "asha@x.com",
		Department: "Eng",
		Position:   "SWE",
		Salary:     50000,
		HireDate:   "2024-01-01",
		Phone:      "555",
	}

	emp := Employee{ID: "e-1"}
	draft.ApplyTo(&emp)

	assert.Equal(t, "e-1", emp.ID)
	assert.Equal(t, draft, emp.Draft())
	assert.Equal(t, "Asha Rao", emp.FullName())
}

func TestNormalizeTrimsTextFields(t *testing.T) {
	draft := EmployeeDraft{FirstName: "  Asha ", Email: " asha@x.com\t", HireDate: " 2024-01-01 "}.Normalize()
	assert.Equal(t, "Asha", draft.FirstName)
	assert.Equal(t, "asha@x.com", draft.Email)
	assert.Equal(t, "2024-01-01", draft.HireDate)
}
