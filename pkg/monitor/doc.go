// Package monitor runs one end-to-end template discovery pass.
//
// A run synchronizes the repository mirror, loads the cached registry,
// scans the commit window, extracts and classifies every changed rule file,
// merges the resulting records, saves the registry and returns the records
// matching the output criteria.
//
// Failure handling:
//   - mirror synchronization failure (*git.SyncError) aborts the run before
//     the cache is read or written
//   - an unreadable cache is logged and the run continues with an empty
//     registry
//   - a file that cannot be read or parsed is skipped and listed in
//     Result.Skipped
//   - a failed history lookup yields a record with no creation time and
//     status MODIFIED
//   - failure to save the registry (*registry.PersistenceError) fails the run
//
// Extraction runs on a bounded worker pool; merges are applied one at a time
// ordered by commit time and then path, so the outcome does not depend on
// scheduling.
package monitor
