//go:build integration

package postgres

import (
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	postgrestest "github.com/blueprint-hub/hub-server/database/postgres/test"

	"github.com/blueprint-hub/hub-server/blueprint/tests"

	_ "github.com/jackc/pgx/v4/stdlib"
)

var testEnv *postgrestest.Env

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	testEnv, err = postgrestest.StartPostgresDB(testPool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}

	_, disconnect, err := postgrestest.WaitForConnection(testEnv.DatabaseUrl, true)
	if err != nil {
		log.WithError(err).Error("Error waiting for connection")
		testEnv.Close()
		os.Exit(1)
	}
	disconnect()

	code := m.Run()
	testEnv.Close()
	os.Exit(code)
}

func TestBlueprint_PostgresStore(t *testing.T) {
	db, disconnect, err := postgrestest.WaitForConnection(testEnv.DatabaseUrl, false)
	if err != nil {
		t.Fatalf("Error connecting to database: %v", err)
	}
	defer disconnect()

	testStore := NewInPostgres(db)
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
