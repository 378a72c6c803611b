package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/models"
)

// fakeEmployeeAPI is an in-memory employee API speaking the same wire format
// as the real server.
type fakeEmployeeAPI struct {
	mu        sync.Mutex
	employees []models.Employee
	seq       int
	requests  []string
	failList  bool
	srv       *httptest.Server
}

func newFakeAPI(t *testing.T, seed ...models.Employee) (*fakeEmployeeAPI, *client.Client) {
	t.Helper()
	f := &fakeEmployeeAPI{employees: append([]models.Employee(nil), seed...)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", f.list)
	mux.HandleFunc("POST /api/employees", f.create)
	mux.HandleFunc("GET /api/employees/search", f.search)
	mux.HandleFunc("GET /api/employees/department/{name}", f.department)
	mux.HandleFunc("GET /api/employees/{id}", f.get)
	mux.HandleFunc("PUT /api/employees/{id}", f.update)
	mux.HandleFunc("DELETE /api/employees/{id}", f.remove)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	f.srv = srv
	return f, client.New(srv.URL)
}

func (f *fakeEmployeeAPI) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeEmployeeAPI) resetLog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, id string) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error": map[string]interface{}{"code": "NOT_FOUND", "message": "Employee not found with id: " + id, "status": 404},
	})
}

func (f *fakeEmployeeAPI) filtered(match func(models.Employee) bool) []models.Employee {
	out := []models.Employee{}
	for _, e := range f.employees {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmployeeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		http.Error(w, "database down", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, f.filtered(func(models.Employee) bool { return true }))
}

func (f *fakeEmployeeAPI) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kw := strings.ToLower(r.URL.Query().Get("keyword"))
	writeJSON(w, http.StatusOK, f.filtered(func(e models.Employee) bool {
		return strings.Contains(strings.ToLower(e.FirstName), kw) ||
			strings.Contains(strings.ToLower(e.LastName), kw) ||
			strings.Contains(strings.ToLower(e.Email), kw)
	}))
}

func (f *fakeEmployeeAPI) department(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := r.PathValue("name")
	writeJSON(w, http.StatusOK, f.filtered(func(e models.Employee) bool { return strings.EqualFold(e.Department, name) }))
}

func (f *fakeEmployeeAPI) indexOf(id string) int {
	for i, e := range f.employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeEmployeeAPI) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	i := f.indexOf(id)
	if i < 0 {
		notFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, f.employees[i])
}

func decodeDraft(r *http.Request) (models.EmployeeDraft, map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return models.EmployeeDraft{}, nil, err
	}
	buf, _ := json.Marshal(raw)
	var draft models.EmployeeDraft
	err := json.Unmarshal(buf, &draft)
	return draft, raw, err
}

func (f *fakeEmployeeAPI) create(w http.ResponseWriter, r *http.Request) {
	draft, raw, err := decodeDraft(r)
	if err != nil || draft.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid"})
		return
	}
	if _, ok := raw["id"]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "id is server-assigned"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	employee := models.Employee{ID: fmt.Sprintf("emp-%d", f.seq)}
	draft.ApplyTo(&employee)
	f.employees = append(f.employees, employee)
	writeJSON(w, http.StatusCreated, employee)
}

func (f *fakeEmployeeAPI) update(w http.ResponseWriter, r *http.Request) {
	draft, _, err := decodeDraft(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	i := f.indexOf(id)
	if i < 0 {
		notFound(w, id)
		return
	}
	draft.ApplyTo(&f.employees[i])
	writeJSON(w, http.StatusOK, f.employees[i])
}

func (f *fakeEmployeeAPI) remove(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	i := f.indexOf(id)
	if i < 0 {
		notFound(w, id)
		return
	}
	f.employees = append(f.employees[:i], f.employees[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
