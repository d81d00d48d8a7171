// Package row provides the value, row, and result-set types shared by every
// other package in evolu.
//
// This package contains type definitions and their codecs only. All other
// internal packages import row; row imports nothing internal. This keeps it
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Values mirror SQLite storage classes exactly: NULL, INTEGER, REAL,
//     TEXT, BLOB. Nothing else is representable.
//   - Equality is strict per storage class with no coercion: Integer(1),
//     Real(1), and Text("1") are pairwise unequal.
//   - A ResultSet is position-significant; index i in one snapshot
//     corresponds to index i in the next.
package row
