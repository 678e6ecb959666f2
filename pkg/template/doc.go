// Package template extracts metadata from detection-rule files.
//
// A rule file is a YAML document with an optional top-level id and an info
// mapping:
//
//	id: CVE-2024-1234
//	info:
//	  name: Example RCE
//	  author: alice,bob
//	  severity: critical
//	  description: Remote code execution in Example.
//	  tags: cve,rce
//
// Only these fields are read; every other key is ignored. Missing or
// mistyped fields fall back to fixed defaults, and only a document that
// cannot be decoded as a mapping at all is rejected with a *ParseError.
package template
