// Package robots performs the advisory crawl-policy check. It is best
// effort by design: any failure to read or parse the policy allows the run
// and is only logged.
package robots

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/cmorand/tmharvest/internal/fetch"
)

// Allowed reports whether userAgent may fetch rawURL according to the
// site's published robots.txt. The policy file is resolved from the URL's
// host; the tested path is the URL's path prefix.
func Allowed(ctx context.Context, client *fetch.Client, rawURL, userAgent string) bool {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		log.Printf("[ROBOTS] cannot derive policy URL from %q; continuing", rawURL)
		return true
	}

	policyURL := target.Scheme + "://" + target.Host + "/robots.txt"
	res, err := client.Get(ctx, policyURL)
	if err != nil || res.StatusCode != http.StatusOK {
		log.Printf("[ROBOTS] could not read %s; continuing", policyURL)
		return true
	}

	data, err := robotstxt.FromString(res.Body)
	if err != nil {
		log.Printf("[ROBOTS] could not parse %s; continuing", policyURL)
		return true
	}

	return data.FindGroup(userAgent).Test(target.Path)
}
