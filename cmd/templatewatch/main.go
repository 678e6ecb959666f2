// templatewatch monitors a nuclei template repository for newly added or
// modified detection-rule templates.
//
// Each invocation synchronizes a local mirror, scans the commits of a
// trailing time window, extracts metadata from the rule files they touched
// and merges the results into a persistent cache.
//
// Usage:
//
//	# Scan the last 8 hours with settings.yml
//	templatewatch
//
//	# Scan the last day for critical HTTP templates and write JSONL
//	templatewatch scan --hours 24 --category http --severity critical --output new.jsonl
//
//	# Show cache statistics
//	templatewatch cache
//
//	# Show version information
//	templatewatch version
package main

func main() {
	Execute()
}
