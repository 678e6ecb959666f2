// Package registry holds the template records discovered across runs.
//
// The registry maps identifier to record. Records are merged with a
// most-recent-commit-wins rule: a record replaces an existing one with the
// same identifier only when its CommittedAt is strictly later, so re-scanning
// the same commits never regresses data. Records are never removed.
//
// Persistence goes through a Store. Two stores are provided: JSONFileStore
// writes a JSON array of records, SQLiteStore keeps one row per record.
//
//	store, err := registry.OpenStore("templates_cache.json", "")
//	reg := registry.New()
//	if err := reg.Load(ctx, store); err != nil {
//		// corrupt cache: continue with an empty registry
//	}
//	reg.Merge(rec)
//	err = reg.Save(ctx, store)
package registry
