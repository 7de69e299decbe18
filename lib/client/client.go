// Package client is an authenticated consumer of the sync service's
// JSON API, the server-side counterpart that aggregates what the parser
// collects.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"wootsync/lib/telemetry"
)

const Version = "0.9.0"

// DefaultUserAgent is the user agent template applied when the
// configuration does not provide one.
const DefaultUserAgent = "%{lib} (+%{host})"

type Config struct {
	// SiteHost is the public site, used in the user agent string.
	SiteHost string `json:"site_host"`
	// APIHost is the API endpoint. SiteHost is used when empty.
	APIHost      string `json:"api_host"`
	UserAgent    string `json:"user_agent"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// UserAgentString expands the configured user agent template.
func (c Config) UserAgentString() string {
	template := c.UserAgent
	if template == "" {
		template = DefaultUserAgent
	}
	return strings.NewReplacer(
		"%{lib}", "wootsync/"+Version,
		"%{host}", c.SiteHost,
	).Replace(template)
}

func (c Config) host() string {
	if c.APIHost != "" {
		return c.APIHost
	}
	return c.SiteHost
}

type Client struct {
	http *resty.Client
	cfg  Config

	mu    sync.Mutex
	token string
}

func New(cfg Config) *Client {
	http := resty.New()
	http.SetBaseURL(cfg.host())
	http.SetTimeout(time.Second * 30)
	http.SetHeader("User-Agent", cfg.UserAgentString())
	telemetry.InstrumentResty(http, "wootsync.lib.client")

	return &Client{http: http, cfg: cfg}
}

type accessToken struct {
	AccessToken string `json:"access_token"`
}

// Authenticate exchanges the configured credentials for an access
// token. It is called lazily by the query methods and retried once when
// a token stops being honored.
func (c *Client) Authenticate(ctx context.Context) error {
	var token accessToken
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "none",
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
		}).
		SetResult(&token).
		Post("oauth/access_token")
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("access token request returned status %d", res.StatusCode())
	}
	if token.AccessToken == "" {
		return fmt.Errorf("access token response carried no token")
	}

	c.mu.Lock()
	c.token = token.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) authHeader(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		if err := c.Authenticate(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.token
		c.mu.Unlock()
	}
	return "OAuth " + token, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	header, err := c.authHeader(ctx)
	if err != nil {
		return err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Get(path)
	if err != nil {
		return err
	}

	if res.StatusCode() == 401 {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		if header, err = c.authHeader(ctx); err != nil {
			return err
		}
		res, err = c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", header).
			Get(path)
		if err != nil {
			return err
		}
	}
	if res.IsError() {
		return fmt.Errorf("GET %s returned status %d", path, res.StatusCode())
	}
	return json.Unmarshal(res.Body(), out)
}

// pathFor reduces a full url or bare resource name to an API request
// path in the json format.
func (c *Client) pathFor(rawURL string) string {
	path := strings.TrimSuffix(rawURL, ".json")
	path = strings.TrimPrefix(path, c.cfg.host())
	return strings.TrimPrefix(path, "/") + ".json"
}

// Sale fetches one sale record by its url or resource path.
func (c *Client) Sale(ctx context.Context, url string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, c.pathFor(url), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Today fetches the current sale of every shop, keyed by shop name.
func (c *Client) Today(ctx context.Context) (map[string]map[string]any, error) {
	var records []map[string]any
	if err := c.getJSON(ctx, c.pathFor("sales"), &records); err != nil {
		return nil, err
	}

	out := make(map[string]map[string]any, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		shop, _ := record["shop"].(map[string]any)
		name, _ := shop["name"].(string)
		if name != "" {
			out[name] = record
		}
	}
	return out, nil
}
