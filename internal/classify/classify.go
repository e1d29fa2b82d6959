// Package classify maps request URLs to a routing decision.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]{4}$`)

// imageExtensions are the suffixes that mark a tracking-pixel request.
var imageExtensions = []string{".png", ".jpg", ".gif"}

// Result is the routing decision for one request URL.
//   - OK false means the URL matched neither form and must be rejected.
//   - Image true means the request is a tracking pixel; the project slug is
//     the filename stem.
type Result struct {
	Project string
	Image   bool
	OK      bool
}

// Classify inspects a raw request URL and decides how to route it. It has no
// side effects and never fails; malformed URLs come back as not-OK.
func Classify(rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}
	}
	path := strings.TrimPrefix(u.Path, "/")

	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			stem := path[:strings.LastIndex(path, ".")]
			if slugPattern.MatchString(stem) {
				return Result{Project: stem, Image: true, OK: true}
			}
			return Result{}
		}
	}
	if slugPattern.MatchString(path) {
		return Result{Project: path, OK: true}
	}
	return Result{}
}
