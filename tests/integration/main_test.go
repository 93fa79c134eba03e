package integration

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

var testDB *TestDB

// TestMain starts a single Postgres container shared by every test in
// the package. Under -short the container is never started and each
// test skips itself.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	db, err := SetupTestDatabase(ctx)
	if err != nil {
		log.Fatalf("failed to set up test database: %v", err)
	}
	testDB = db

	code := m.Run()

	if err := db.Teardown(ctx); err != nil {
		log.Printf("teardown failed: %v", err)
	}
	os.Exit(code)
}

// freshDB skips under -short and truncates every table so tests start
// from an empty schema.
func freshDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	require.NoError(t, testDB.CleanupTables(context.Background()))
	return testDB
}
