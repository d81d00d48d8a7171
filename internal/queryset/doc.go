// Package queryset compiles watched-query definitions from CUE.
//
// A query set declares the live queries a watcher keeps materialized:
//
//	queries: {
//		todos: {
//			sql: "SELECT id, title, done FROM todos ORDER BY id"
//		}
//		open: {
//			sql:        "SELECT id FROM todos WHERE done = ? ORDER BY id"
//			params:     [0]
//			refresh_ms: 250
//		}
//	}
//
// Queries the patch engine watches must carry a deterministic ORDER BY;
// the engine compares result snapshots positionally and an unstable order
// turns every refresh into spurious patches. The compiler cannot check
// that, so it is a documented contract on the SQL author.
package queryset
