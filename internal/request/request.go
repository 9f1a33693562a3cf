// Package request parses the bundler's internal module-request strings into
// a displayable (file, loader chain) form.
package request

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var loaderPattern = regexp.MustCompile(`[a-z0-9-@]+-loader`)

// Separator joins loader names and the file in formatted output.
const Separator = " › "

// ParsedRequest is the structured form of a raw loader-chain request such as
// "babel-loader!css-loader!./src/app.js?inline". File is relative to the
// working directory and empty when the request carried no resolvable file.
type ParsedRequest struct {
	File    string
	Loaders []string
}

// Parse decodes a raw request string. Segments are separated by '!'; the last
// segment names the target file and the preceding ones the loader chain.
// Parse never fails: malformed or empty input degrades to zero fields.
func Parse(raw string) ParsedRequest {
	parsed := ParsedRequest{Loaders: []string{}}
	if strings.TrimSpace(raw) == "" {
		return parsed
	}

	segments := strings.Split(raw, "!")
	parsed.File = cleanFile(segments[len(segments)-1])
	for _, segment := range segments[:len(segments)-1] {
		if name := loaderPattern.FindString(segment); name != "" {
			parsed.Loaders = append(parsed.Loaders, name)
		}
	}
	return parsed
}

// Format renders a parsed request as one display line: loaders in chain
// order joined by Separator, then the file. Truncation is the caller's job.
func Format(r ParsedRequest) string {
	if len(r.Loaders) == 0 {
		return r.File
	}
	return strings.Join(r.Loaders, Separator) + Separator + r.File
}

func cleanFile(segment string) string {
	if i := strings.IndexByte(segment, '?'); i >= 0 {
		segment = segment[:i]
	}
	segment = filepath.ToSlash(segment)
	// Show dependency files by their package-relative path, not the full
	// install location.
	if i := strings.LastIndex(segment, "node_modules/"); i >= 0 {
		segment = segment[i+len("node_modules/"):]
	}
	if segment == "" {
		return ""
	}
	return relativize(segment)
}

func relativize(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
