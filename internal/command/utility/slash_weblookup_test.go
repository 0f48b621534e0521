package utility

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProfileURL(t *testing.T) {
	url := buildProfileURL("https://example.org/", "/profile", "12345")
	assert.Equal(t, "https://example.org/profile/12345-x", url)
}

func TestResolveProfileURLFollowsRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://example.org/profile/12345-john-doe/", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	c := &WebLookupCommand{HTTPClient: srv.Client()}
	resolved := c.resolveProfileURL(srv.URL + "/profile/12345-x")
	assert.Equal(t, "https://example.org/profile/12345-john-doe/", resolved)
}

func TestResolveProfileURLFallsBackToCanonical(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><link rel="canonical" href="%s/profile/12345-jane/"></head></html>`, srvURL)
	}))
	defer srv.Close()
	srvURL = srv.URL

	c := &WebLookupCommand{HTTPClient: srv.Client()}
	resolved := c.resolveProfileURL(srv.URL + "/profile/12345-x")
	assert.Equal(t, srv.URL+"/profile/12345-jane/", resolved)
}

func TestExtractCanonicalURL(t *testing.T) {
	html := `<meta property="og:url" content="https://example.org/profile/7-sam/">`
	assert.Equal(t, "https://example.org/profile/7-sam/", extractCanonicalURL(html))

	// non-profile canonicals are ignored
	assert.Equal(t, "", extractCanonicalURL(`<link rel="canonical" href="https://example.org/home">`))
	assert.Equal(t, "", extractCanonicalURL("<html></html>"))
}
