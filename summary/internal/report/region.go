package report

import "strings"

// ReplaceRegion replaces the text between the first start marker and the
// first end marker after it, keeping both markers. It reports false and
// returns doc unchanged when either marker is missing.
func ReplaceRegion(doc, start, end, body string) (string, bool) {
	return ReplaceBlock(doc, start, end, start+body+end)
}

// ReplaceBlock is ReplaceRegion with the markers themselves replaced too.
func ReplaceBlock(doc, start, end, repl string) (string, bool) {
	i := strings.Index(doc, start)
	if i < 0 {
		return doc, false
	}
	rest := doc[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return doc, false
	}
	return doc[:i] + repl + rest[j+len(end):], true
}
