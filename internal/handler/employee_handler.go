package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/employee-admin/internal/models"
	appErrors "github.com/noah-isme/employee-admin/pkg/errors"
	"github.com/noah-isme/employee-admin/pkg/response"
)

type employeeService interface {
	List(ctx context.Context) ([]models.Employee, error)
	Search(ctx context.Context, keyword string) ([]models.Employee, error)
	ListByDepartment(ctx context.Context, name string) ([]models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, draft models.EmployeeDraft) (*models.Employee, error)
	Update(ctx context.Context, id string, draft models.EmployeeDraft) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// EmployeeHandler exposes employee endpoints.
type EmployeeHandler struct {
	employees employeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Register mounts the employee routes on rg.
func (h *EmployeeHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/search", h.Search)
	rg.GET("/department/:name", h.ListByDepartment)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Success 200 {array} models.Employee
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.employees.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employees)
}

// Search godoc
// @Summary Search employees by first name, last name or email
// @Tags Employees
// @Produce json
// @Param keyword query string true "Case-insensitive substring"
// @Success 200 {array} models.Employee
// @Failure 400 {object} response.ErrorEnvelope
// @Router /employees/search [get]
func (h *EmployeeHandler) Search(c *gin.Context) {
	employees, err := h.employees.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employees)
}

// ListByDepartment godoc
// @Summary List employees of a department
// @Tags Employees
// @Produce json
// @Param name path string true "Department name, case-insensitive"
// @Success 200 {array} models.Employee
// @Router /employees/department/{name} [get]
func (h *EmployeeHandler) ListByDepartment(c *gin.Context) {
	employees, err := h.employees.ListByDepartment(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employees)
}

// Get godoc
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} response.ErrorEnvelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employee)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body models.EmployeeDraft true "Employee payload"
// @Success 201 {object} models.Employee
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var draft models.EmployeeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Replace employee fields
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body models.EmployeeDraft true "Employee payload"
// @Success 200 {object} models.Employee
// @Failure 404 {object} response.ErrorEnvelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var draft models.EmployeeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employee)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204
// @Failure 404 {object} response.ErrorEnvelope
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
