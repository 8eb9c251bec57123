//go:build integration

package postgres

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/head0x49F/students-api/internal/config"
	"github.com/head0x49F/students-api/internal/storage"
	"github.com/head0x49F/students-api/internal/types"
)

// startPostgres runs a throwaway server and returns storage settings
// pointing at a database that does not exist yet.
func startPostgres(t *testing.T) config.Storage {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(MaintenanceDB),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.Storage{
		Driver:   config.DriverPostgres,
		Host:     host,
		Port:     portNum,
		User:     "test",
		Password: "test",
		Name:     "students",
		SSLMode:  "disable",
	}
}

func TestPostgres_ProvisionAndCRUD(t *testing.T) {
	ctx := context.Background()
	cfg := startPostgres(t)

	store, err := New(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	// A second provision against an existing database is a no-op.
	require.NoError(t, Provision(ctx, cfg))

	created, err := store.CreateStudent(ctx, types.Student{
		Name: "Ann", Email: "ann@x.com", Age: 21, Cellphone: "5551234567",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = store.CreateStudent(ctx, types.Student{
		Name: "Dup", Email: "ann@x.com", Age: 30, Cellphone: "5550000000",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	updated, err := store.UpdateStudentByID(ctx, created.ID, types.StudentUpdate{Age: 22})
	require.NoError(t, err)
	assert.Equal(t, 22, updated.Age)
	assert.Equal(t, "5551234567", updated.Cellphone)

	require.NoError(t, store.DeleteStudentByID(ctx, created.ID))
	_, err = store.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
