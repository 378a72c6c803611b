package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/employee-admin/internal/models"
	appErrors "github.com/noah-isme/employee-admin/pkg/errors"
)

func TestCacheRepositoryGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	mock.ExpectGet("employees:all").RedisNil()

	var out []models.Employee
	err := repo.Get(context.Background(), "employees:all", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositorySetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	payload := `[{"id":"e1","firstName":"Asha","lastName":"Rao","email":"asha@x.com","department":"Eng","position":"SWE","salary":50000,"hireDate":"2024-01-01","phone":"555"}]`
	employees := []models.Employee{{ID: "e1", FirstName: "Asha", LastName: "Rao", Email: "asha@x.com", Department: "Eng", Position: "SWE", Salary: 50000, HireDate: "2024-01-01", Phone: "555"}}

	mock.ExpectSet("employees:all", []byte(payload), time.Minute).SetVal("OK")
	require.NoError(t, repo.Set(context.Background(), "employees:all", employees, time.Minute))

	mock.ExpectGet("employees:all").SetVal(payload)
	var out []models.Employee
	require.NoError(t, repo.Get(context.Background(), "employees:all", &out))
	assert.Equal(t, employees, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client)

	mock.ExpectScan(0, "employees:*", 0).SetVal([]string{"employees:all", "employees:search:asha"}, 0)
	mock.ExpectDel("employees:all", "employees:search:asha").SetVal(2)

	require.NoError(t, repo.DeleteByPattern(context.Background(), "employees:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	var out []models.Employee
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", out, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "k*"))
	assert.NoError(t, repo.Close())
}
