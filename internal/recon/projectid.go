package recon

import "regexp"

// projectIDRe matches the first /digits/digits run in a feed or CRM URL.
// The project identifier is the first digit group; the second is a revision
// counter the feed appends.
var projectIDRe = regexp.MustCompile(`/(\d+)/\d+`)

// ExtractProjectID derives the canonical project identifier from a
// URL-shaped string. Absent input or no match yields absent.
func ExtractProjectID(url *string) *string {
	if url == nil {
		return nil
	}
	m := projectIDRe.FindStringSubmatch(*url)
	if m == nil {
		return nil
	}
	return &m[1]
}
