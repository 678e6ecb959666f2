// Package history derives creation time and NEW/MODIFIED status of a rule
// file from the commits that touched it.
//
// A path touched by exactly one commit is NEW; anything else is MODIFIED.
// Renames are not followed, so a renamed file is reported as NEW under its
// new path.
package history
