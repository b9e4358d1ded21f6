package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmorand/tmharvest/internal/fetch"
)

const policy = `User-agent: *
Disallow: /private/
Allow: /
`

func policyServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(policy))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAllowed_RespectsDisallow(t *testing.T) {
	server := policyServer(t)
	client := fetch.NewClient(nil)

	assert.False(t, Allowed(context.Background(), client, server.URL+"/private/data.php", fetch.DefaultUserAgent))
	assert.True(t, Allowed(context.Background(), client, server.URL+"/dataservices/responder.php", fetch.DefaultUserAgent))
}

func TestAllowed_MissingPolicyDoesNotBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client := fetch.NewClient(nil)
	assert.True(t, Allowed(context.Background(), client, server.URL+"/anything", fetch.DefaultUserAgent))
}

func TestAllowed_UnreachableHostDoesNotBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := fetch.NewClient(nil)
	assert.True(t, Allowed(context.Background(), client, url+"/anything", fetch.DefaultUserAgent))
}

func TestAllowed_UnparseableURLDoesNotBlock(t *testing.T) {
	client := fetch.NewClient(nil)
	assert.True(t, Allowed(context.Background(), client, "://not-a-url", fetch.DefaultUserAgent))
}
