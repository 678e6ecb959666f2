package template

import (
	"regexp"
	"strconv"
	"strings"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// Category returns the first segment of a slash-separated path, or
// DefaultCategory when the file sits at the repository root.
func Category(filePath string) string {
	filePath = strings.TrimPrefix(filePath, "/")
	i := strings.Index(filePath, "/")
	if i <= 0 {
		return DefaultCategory
	}
	return filePath[:i]
}

// CategoryFromURL returns the path segment that follows marker in url, or
// DefaultCategory when the marker is absent or nothing follows it.
//
//	CategoryFromURL("https://host/org/repo/blob/main/http/cves/x.yaml", "/main/") // "http"
func CategoryFromURL(url, marker string) string {
	if marker == "" {
		return DefaultCategory
	}
	i := strings.Index(url, marker)
	if i < 0 {
		return DefaultCategory
	}
	rest := url[i+len(marker):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return DefaultCategory
	}
	return rest
}

// RawURL joins the raw-content base URL and a repository-relative path.
func RawURL(base, filePath string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(filePath, "/")
}

// errorLine pulls the line number out of a yaml.v3 error message.
func errorLine(err error) int {
	m := yamlLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
