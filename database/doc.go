// Package database connects to the note storage backend selected by
// configuration.
//
// # Supported Backends
//
//   - SQLite: single-node deployments and tests, using modernc.org/sqlite
//   - PostgreSQL: shared deployments, using a pgx connection pool
//   - DynamoDB: a table keyed by ownerId and itemId, using aws-sdk-go-v2
//
// # Usage
//
//	db, err := database.Connect(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "notes.db",
//	    Tables: notes.Tables{Notes: "notes"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	store := db.GetStore()
//
// Connect only opens the backend. Call Migrate to create the notes table,
// or Validate to check an existing one.
package database
