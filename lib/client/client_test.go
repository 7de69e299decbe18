package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	authCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "none", r.PostForm.Get("grant_type"))
		require.Equal(t, "id", r.PostForm.Get("client_id"))
		require.Equal(t, "secret", r.PostForm.Get("client_secret"))
		authCalls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "token-%d"}`, authCalls)
	})
	mux.HandleFunc("/sales.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[
			{"shop": {"name": "woot"}, "status": "Sold Out"},
			{"shop": {"name": "wine"}, "status": "On Sale"},
			null
		]`)
	})
	mux.HandleFunc("/sales/12345.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"shop": {"name": "woot"}, "number": 12345}`)
	})
	return httptest.NewServer(mux), &authCalls
}

func testClient(srv *httptest.Server) *Client {
	return New(Config{
		SiteHost:     srv.URL,
		UserAgent:    "%{lib} test agent",
		ClientID:     "id",
		ClientSecret: "secret",
	})
}

func TestToday(t *testing.T) {
	srv, authCalls := newTestServer(t)
	defer srv.Close()

	c := testClient(srv)
	today, err := c.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, *authCalls)

	require.Len(t, today, 2)
	require.Equal(t, "Sold Out", today["woot"]["status"])
	require.Equal(t, "On Sale", today["wine"]["status"])
}

func TestSalePathNormalization(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	c := testClient(srv)
	for _, url := range []string{
		srv.URL + "/sales/12345",
		srv.URL + "/sales/12345.json",
		"sales/12345",
	} {
		record, err := c.Sale(context.Background(), url)
		require.NoError(t, err, url)
		require.Equal(t, 12345.0, record["number"], url)
	}
}

func TestReauthenticatesOnUnauthorized(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	authCalls := 0
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "token-%d"}`, authCalls)
	})
	mux.HandleFunc("/sales.json", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") != "OAuth token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"shop": {"name": "woot"}}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	today, err := c.Today(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, authCalls)
	require.Equal(t, 2, requests)
	require.Contains(t, today, "woot")
}

func TestUserAgentString(t *testing.T) {
	cfg := Config{SiteHost: "http://www.example.com", UserAgent: "%{lib} (+%{host})"}
	require.Equal(t, "wootsync/"+Version+" (+http://www.example.com)", cfg.UserAgentString())

	require.Equal(t, cfg.UserAgentString(), Config{SiteHost: "http://www.example.com"}.UserAgentString())
}
