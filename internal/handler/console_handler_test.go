package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/console"
	"github.com/noah-isme/employee-admin/internal/models"
	appErrors "github.com/noah-isme/employee-admin/pkg/errors"
)

func notFoundErr(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "Employee not found with id: "+id)
}

// backend serves the employee REST API from the real handler over an
// in-memory service.
type backend struct {
	mu        sync.Mutex
	employees []models.Employee
	seq       int
}

func (b *backend) List(ctx context.Context) ([]models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Employee{}, b.employees...), nil
}

func (b *backend) Search(ctx context.Context, keyword string) ([]models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Employee{}
	for _, e := range b.employees {
		if strings.Contains(strings.ToLower(e.FullName()+" "+e.Email), strings.ToLower(keyword)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (b *backend) ListByDepartment(ctx context.Context, name string) ([]models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Employee{}
	for _, e := range b.employees {
		if strings.EqualFold(e.Department, name) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (b *backend) Get(ctx context.Context, id string) (*models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.employees {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, notFoundErr(id)
}

func (b *backend) Create(ctx context.Context, draft models.EmployeeDraft) (*models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	e := models.Employee{ID: "emp-" + strconv.Itoa(b.seq)}
	draft.ApplyTo(&e)
	b.employees = append(b.employees, e)
	return &e, nil
}

func (b *backend) Update(ctx context.Context, id string, draft models.EmployeeDraft) (*models.Employee, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.employees {
		if b.employees[i].ID == id {
			draft.ApplyTo(&b.employees[i])
			e := b.employees[i]
			return &e, nil
		}
	}
	return nil, notFoundErr(id)
}

func (b *backend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.employees {
		if b.employees[i].ID == id {
			b.employees = append(b.employees[:i], b.employees[i+1:]...)
			return nil
		}
	}
	return notFoundErr(id)
}

type consoleFixture struct {
	backend *backend
	router  *gin.Engine
	cookie  *http.Cookie
}

func newConsoleFixture(t *testing.T, seed ...models.Employee) *consoleFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	be := &backend{employees: seed}
	api := gin.New()
	NewEmployeeHandler(be).Register(api.Group("/api/employees"))
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	apiClient := client.New(srv.URL)
	sessions := console.NewSessions(time.Hour, func() *console.View { return console.NewView(apiClient) })
	h := NewConsoleHandler(sessions, nil, false)
	h.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	r := gin.New()
	h.Register(r)
	return &consoleFixture{backend: be, router: r}
}

func (f *consoleFixture) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			f.cookie = c
		}
	}
	return w
}

func TestConsoleEmptyListShowsPlaceholder(t *testing.T) {
	f := newConsoleFixture(t)

	w := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No employees found")
	require.NotNil(t, f.cookie)
	assert.True(t, f.cookie.HttpOnly)
}

func TestConsoleCreateEditDeleteFlow(t *testing.T) {
	f := newConsoleFixture(t)
	f.do(t, http.MethodGet, "/", nil)

	w := f.do(t, http.MethodGet, "/employees/new", nil)
	assert.Contains(t, w.Body.String(), "Add Employee")
	assert.Contains(t, w.Body.String(), `action="/employees/save"`)

	form := url.Values{
		"firstName": {"Asha"}, "lastName": {"Rao"}, "email": {"asha@x.com"}, "department": {"Eng"},
		"position": {"SWE"}, "salary": {"50000"}, "hireDate": {"2024-01-01"}, "phone": {"555"},
	}
	w = f.do(t, http.MethodPost, "/employees/save", form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = f.do(t, http.MethodGet, "/", nil)
	body := w.Body.String()
	assert.Contains(t, body, "Asha Rao")
	assert.Contains(t, body, "Rs 50,000")
	assert.NotContains(t, body, "No employees found")

	w = f.do(t, http.MethodGet, "/employees/emp-1/edit", nil)
	assert.Contains(t, w.Body.String(), "Edit Employee")
	assert.Contains(t, w.Body.String(), `value="asha@x.com"`)

	form.Set("salary", "60000")
	w = f.do(t, http.MethodPost, "/employees/save", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 60000.0, f.backend.employees[0].Salary)
	assert.Equal(t, "emp-1", f.backend.employees[0].ID)

	w = f.do(t, http.MethodGet, "/employees/emp-1/delete", nil)
	assert.Contains(t, w.Body.String(), console.DeleteConfirmation)

	w = f.do(t, http.MethodPost, "/employees/emp-1/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, f.backend.employees, 1)

	w = f.do(t, http.MethodPost, "/employees/emp-1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, f.backend.employees)
	assert.Contains(t, f.do(t, http.MethodGet, "/", nil).Body.String(), "No employees found")
}

func TestConsoleSaveInvalidDraftKeepsModal(t *testing.T) {
	f := newConsoleFixture(t)
	f.do(t, http.MethodGet, "/employees/new", nil)

	w := f.do(t, http.MethodPost, "/employees/save", url.Values{"firstName": {"Asha"}, "email": {"bad"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Last name is required")
	assert.Contains(t, w.Body.String(), `value="Asha"`)
	assert.Empty(t, f.backend.employees)
}

func TestConsoleSearchByUnknownIDShowsAlert(t *testing.T) {
	f := newConsoleFixture(t, models.Employee{ID: "e1", FirstName: "Asha", LastName: "Rao", Email: "asha@x.com"})
	f.do(t, http.MethodGet, "/", nil)

	w := f.do(t, http.MethodPost, "/search", url.Values{"mode": {"id"}, "query": {"ghost"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := f.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "Employee not found with ID: ghost")
	assert.Contains(t, body, "No employees found")

	f.do(t, http.MethodPost, "/clear", url.Values{})
	body = f.do(t, http.MethodGet, "/", nil).Body.String()
	assert.NotContains(t, body, "Employee not found")
	assert.Contains(t, body, "Asha Rao")
}

func TestConsoleSearchOnFreshSessionSurvivesFirstPageLoad(t *testing.T) {
	f := newConsoleFixture(t, models.Employee{ID: "e1", FirstName: "Asha", LastName: "Rao", Email: "asha@x.com"})

	w := f.do(t, http.MethodPost, "/search", url.Values{"mode": {"id"}, "query": {"ghost"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := f.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "Employee not found with ID: ghost")
	assert.Contains(t, body, "No employees found")
	assert.NotContains(t, body, "Asha Rao")
}

func TestConsoleExportOnFreshSessionLoadsList(t *testing.T) {
	f := newConsoleFixture(t, models.Employee{ID: "e1", FirstName: "Asha", LastName: "Rao", Email: "asha@x.com", Salary: 50000})

	w := f.do(t, http.MethodGet, "/export.csv", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "e1,Asha,Rao,asha@x.com,,,50000.00,,")
}

func TestConsoleSaveRejectsInfiniteSalary(t *testing.T) {
	f := newConsoleFixture(t)
	f.do(t, http.MethodGet, "/employees/new", nil)

	w := f.do(t, http.MethodPost, "/employees/save", url.Values{
		"firstName": {"Asha"}, "lastName": {"Rao"}, "email": {"asha@x.com"}, "salary": {"Inf"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "is not a number")
	assert.Empty(t, f.backend.employees)
}

func TestConsoleFilterModeSwitch(t *testing.T) {
	f := newConsoleFixture(t)

	w := f.do(t, http.MethodPost, "/filter", url.Values{"mode": {"department"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	body := f.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `name="mode" value="department"`)

	w = f.do(t, http.MethodPost, "/filter", url.Values{"mode": {"salary"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConsoleEditUnknownRow(t *testing.T) {
	f := newConsoleFixture(t)
	w := f.do(t, http.MethodGet, "/employees/nobody/edit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsoleExportCSV(t *testing.T) {
	f := newConsoleFixture(t, models.Employee{ID: "e1", FirstName: "Asha", LastName: "Rao", Email: "asha@x.com", Salary: 50000})
	f.do(t, http.MethodGet, "/", nil)

	w := f.do(t, http.MethodGet, "/export.csv", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="employees-20240101-090000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "e1,Asha,Rao,asha@x.com,,,50000.00,,")
}

func TestConsoleExportPDF(t *testing.T) {
	f := newConsoleFixture(t)
	w := f.do(t, http.MethodGet, "/export.pdf", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestConsoleUnreachableAPIRendersBanner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	apiClient := client.New(dead.URL)
	sessions := console.NewSessions(time.Hour, func() *console.View { return console.NewView(apiClient) })
	r := gin.New()
	NewConsoleHandler(sessions, nil, false).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "could not be reached")
}
