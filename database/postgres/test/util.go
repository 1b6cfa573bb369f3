package test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	containerName    = "postgres"
	containerVersion = "16-alpine"
	containerExpiry  = 5 * time.Minute

	dbUser     = "hub"
	dbPassword = "hub"
	dbName     = "hub_test"
)

// Env is a running postgres container used by store tests.
type Env struct {
	DatabaseUrl string

	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// Close removes the container.
func (e *Env) Close() error {
	if e == nil || e.resource == nil {
		return nil
	}
	return e.pool.Purge(e.resource)
}

// StartPostgresDB starts a throwaway postgres container and returns its
// connection string. The container expires on its own if the test binary dies.
func StartPostgresDB(pool *dockertest.Pool) (*Env, error) {
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Env: []string{
			"POSTGRES_USER=" + dbUser,
			"POSTGRES_PASSWORD=" + dbPassword,
			"POSTGRES_DB=" + dbName,
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not start postgres container")
	}

	if err := resource.Expire(uint(containerExpiry.Seconds())); err != nil {
		_ = pool.Purge(resource)
		return nil, errors.Wrap(err, "could not set container expiry")
	}

	url := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		dbUser,
		dbPassword,
		resource.GetHostPort("5432/tcp"),
		dbName,
	)

	return &Env{
		DatabaseUrl: url,
		pool:        pool,
		resource:    resource,
	}, nil
}

// WaitForConnection blocks until the database accepts connections, optionally
// applying the schema. The returned func closes the connection.
func WaitForConnection(databaseUrl string, migrate bool) (*sql.DB, func(), error) {
	var db *sql.DB

	deadline := time.Now().Add(time.Minute)
	for {
		var err error
		db, err = sql.Open("pgx", databaseUrl)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}

		if db != nil {
			_ = db.Close()
		}
		if time.Now().After(deadline) {
			return nil, nil, errors.Wrap(err, "timed out waiting for postgres")
		}
		time.Sleep(500 * time.Millisecond)
	}

	if migrate {
		if err := pg.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, nil, errors.Wrap(err, "failed to apply schema")
		}
	}

	return db, func() { _ = db.Close() }, nil
}
