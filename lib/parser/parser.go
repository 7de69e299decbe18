// Package parser turns raw payloads from the upstream source formats
// into Sale records, drives the follow-up fetches needed to enrich a
// sale to completion, and dispatches an input to the right extractor.
package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"

	"wootsync/lib/shops"
	"wootsync/lib/telemetry"
)

var tracer = otel.Tracer("wootsync.lib.parser")

// Format tags naming each upstream source format.
const (
	FormatHomepage = "homepage"
	FormatFeed     = "feed"
	FormatSummary  = "summary"
	FormatStats    = "stats"
)

// ParseError means a required field could not be located in a payload
// believed well-formed for its declared format. It is not retried.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Format, e.Reason)
}

// FetchError is a transport failure surfaced from a fetch. The retry
// policy belongs to the transport, not here.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var (
	ErrInvalidInput     = errors.New("input must be an attribute map, shop, shop name, or forum url")
	ErrNumberUnresolved = errors.New("sale number is not resolved")
	ErrUnknownSourceTag = errors.New("shop declares an unknown source format")
)

type Options struct {
	// Client is used for source and stats fetches. A default
	// instrumented client is built when nil.
	Client *resty.Client
	// ForumClient is used for forum resolution, which must observe
	// redirect responses instead of following them.
	ForumClient *resty.Client
}

type Parser struct {
	reg         *shops.Registry
	client      *resty.Client
	forumClient *resty.Client
}

func New(reg *shops.Registry, opts Options) *Parser {
	client := opts.Client
	if client == nil {
		client = resty.New()
		client.SetTimeout(time.Second * 30)
		telemetry.InstrumentResty(client, "wootsync.lib.parser")
	}

	forumClient := opts.ForumClient
	if forumClient == nil {
		forumClient = resty.New()
		forumClient.SetTimeout(time.Second * 30)
		telemetry.InstrumentResty(forumClient, "wootsync.lib.parser.forum")
	}
	forumClient.SetRedirectPolicy(resty.RedirectPolicyFunc(
		func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	))

	return &Parser{
		reg:         reg,
		client:      client,
		forumClient: forumClient,
	}
}

func (p *Parser) Registry() *shops.Registry { return p.reg }

var timeLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 3:04 PM",
	"Monday, January 02, 2006 3:04 PM",
	"January 02, 2006",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
