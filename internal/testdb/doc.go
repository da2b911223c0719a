//go:build integration

// Package testdb provides utilities for PostgreSQL integration tests.
//
// It implements a transaction-based isolation pattern: each test runs in its
// own transaction which is rolled back when the test completes, so tests can
// run in parallel without cleaning up after themselves.
//
// The database is located through TEST_DATABASE_URL, falling back to a
// postgres DATABASE_URL. Tests are skipped when neither is set. The schema is
// created with the same embedded goose migrations the server uses.
//
//	func TestMyFeature(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        taskStore := postgres.NewPostgresTaskStore(db, nil).WithTx(tx)
//	        // ...
//	    })
//	}
package testdb
