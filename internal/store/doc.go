// Package store provides SQLite-backed query execution for evolu.
//
// The store is the upstream producer for the patch engine: it executes SQL
// against the application's database and materializes the result as a
// row.ResultSet snapshot that the live layer can diff against the previous
// one. It owns no tables of its own; the schema belongs to the application.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Scanned values map one-to-one onto SQLite storage classes: nil becomes
// row.Null, int64 row.Integer, float64 row.Real, string row.Text, and
// []byte a copied row.Blob. Nothing is coerced.
package store
