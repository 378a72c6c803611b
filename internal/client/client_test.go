package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/employee-admin/internal/models"
	"github.com/noah-isme/employee-admin/pkg/middleware/requestid"
)

type recordedRequest struct {
	Method string
	URI    string
	Body   string
}

type stubAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (s *stubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{Method: r.Method, URI: r.URL.RequestURI(), Body: string(raw)})
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = io.WriteString(w, s.body)
}

func newStub(t *testing.T, status int, body string) (*stubAPI, *Client) {
	t.Helper()
	stub := &stubAPI{status: status, body: body}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, New(srv.URL + "/")
}

type callRecorder struct {
	ops []string
	err []error
}

func (r *callRecorder) ObserveAPICall(op string, err error, _ time.Duration) {
	r.ops = append(r.ops, op)
	r.err = append(r.err, err)
}

func TestListAllDecodesArray(t *testing.T) {
	stub, c := newStub(t, http.StatusOK, `[{"id":"e1","firstName":"Asha","lastName":"Rao","salary":50000,"hireDate":"2024-01-01"}]`)

	list, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].FirstName)
	assert.Equal(t, 50000.0, list[0].Salary)
	assert.Equal(t, []recordedRequest{{Method: http.MethodGet, URI: "/api/employees"}}, stub.requests)
}

func TestListAllHTTPError(t *testing.T) {
	_, c := newStub(t, http.StatusInternalServerError, `boom`)

	_, err := c.ListAll(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "boom", string(httpErr.Body))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base).ListAll(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.MethodGet, netErr.Method)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGetByIDAnyFailureIsNotFound(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		_, c := newStub(t, status, `{}`)

		_, err := c.GetByID(context.Background(), "abc 1")
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "abc 1", nf.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, status, StatusCode(err))
	}
}

func TestGetByIDEscapesPath(t *testing.T) {
	stub, c := newStub(t, http.StatusOK, `{"id":"a/b"}`)

	emp, err := c.GetByID(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", emp.ID)
	assert.Equal(t, "/api/employees/a%2Fb", stub.requests[0].URI)
}

func TestCreatePostsDraftWithoutID(t *testing.T) {
	stub, c := newStub(t, http.StatusCreated, `{"id":"new-1","firstName":"Asha"}`)

	emp, err := c.Create(context.Background(), models.EmployeeDraft{FirstName: "Asha", LastName: "Rao", Email: "a@x.com", Salary: 50000})
	require.NoError(t, err)
	assert.Equal(t, "new-1", emp.ID)

	req := stub.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.NotContains(t, body, "id")
	assert.Equal(t, 50000.0, body["salary"])
}

func TestCreateRejectedIsValidationError(t *testing.T) {
	_, c := newStub(t, http.StatusBadRequest, `{"error":{"code":"VALIDATION_ERROR"}}`)

	_, err := c.Create(context.Background(), models.EmployeeDraft{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestUpdateMapsStatuses(t *testing.T) {
	stub, c := newStub(t, http.StatusNotFound, `{}`)
	_, err := c.Update(context.Background(), "e1", models.EmployeeDraft{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.MethodPut, stub.requests[0].Method)
	assert.Equal(t, "/api/employees/e1", stub.requests[0].URI)

	_, c = newStub(t, http.StatusConflict, `{}`)
	_, err = c.Update(context.Background(), "e1", models.EmployeeDraft{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDelete(t *testing.T) {
	stub, c := newStub(t, http.StatusNoContent, ``)
	require.NoError(t, c.Delete(context.Background(), "e1"))
	assert.Equal(t, recordedRequest{Method: http.MethodDelete, URI: "/api/employees/e1"}, stub.requests[0])

	_, c = newStub(t, http.StatusNotFound, ``)
	assert.ErrorIs(t, c.Delete(context.Background(), "e1"), ErrNotFound)
}

func TestSearchAndDepartmentBlankIssueNoRequest(t *testing.T) {
	stub, c := newStub(t, http.StatusOK, `[]`)

	list, err := c.SearchByKeyword(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, list)
	list, err = c.ListByDepartment(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, list)
	assert.Empty(t, stub.requests)
}

func TestSearchAndDepartmentEncodeQuery(t *testing.T) {
	stub, c := newStub(t, http.StatusOK, `[]`)

	list, err := c.SearchByKeyword(context.Background(), "asha rao")
	require.NoError(t, err)
	assert.NotNil(t, list)
	_, err = c.ListByDepartment(context.Background(), "R&D")
	require.NoError(t, err)

	assert.Equal(t, "/api/employees/search?keyword=asha+rao", stub.requests[0].URI)
	assert.Equal(t, "/api/employees/department/R&D", stub.requests[1].URI)
}

func TestObserverAndDebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &callRecorder{}
	stub := &stubAPI{status: http.StatusOK, body: `[]`}
	srv := httptest.NewServer(stub)
	defer srv.Close()
	c := New(srv.URL, WithLogger(zap.New(core)), WithObserver(rec), WithHTTPClient(srv.Client()))

	_, err := c.ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"list"}, rec.ops)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, http.MethodGet, fields["method"])
}

func TestForwardsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(requestid.Header)
		_, _ = io.WriteString(w, "[]")
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListAll(requestid.WithID(context.Background(), "req-7"))
	require.NoError(t, err)
	assert.Equal(t, "req-7", got)
}
