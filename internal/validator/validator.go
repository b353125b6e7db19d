// Package validator provides content hygiene for notification subjects and
// bodies before they are persisted.
package validator

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	stylePattern   = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// CleanText strips markup from user-authored content and normalizes
// whitespace. Script and style blocks are dropped with their contents;
// remaining tags are replaced by a single space so adjacent words do not
// fuse together.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = scriptPattern.ReplaceAllString(s, " ")
	s = stylePattern.ReplaceAllString(s, " ")
	s = commentPattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
