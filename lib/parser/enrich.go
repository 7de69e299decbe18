package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wootsync/lib/sale"
)

// Use the old script path instead of SaleStats.aspx because it still
// includes the product thumbnail image.
const statsScriptPath = "scripts/dynamic.aspx?control=salesummary&saleid=%d"

var (
	redirectForumRegex  = regexp.MustCompile(`(?i)DiscussionRedirect`)
	trailingDigitsRegex = regexp.MustCompile(`\d+$`)
	dealsSaleIDRegex    = regexp.MustCompile(`(?i)sale/(\d+)`)
	querySaleIDRegex    = regexp.MustCompile(`(?i)wootsaleid=(\d+)`)
)

// ResolveForum fills in the sale number, start time, and canonical
// forum url by requesting the sale's forum page. It is a no-op when the
// sale has no forum url, or already has a number and a non-redirecting
// forum url. A 302 is an answer here, not something to follow: the
// redirect target encodes the sale number.
func (p *Parser) ResolveForum(ctx context.Context, s *sale.Sale) error {
	forumURL := s.ForumURL()
	if forumURL == "" {
		return nil
	}
	if _, ok := s.Number(); ok && !redirectForumRegex.MatchString(forumURL) {
		return nil
	}

	res, err := p.forumClient.R().SetContext(ctx).Get(forumURL)
	if err != nil {
		return &FetchError{URL: forumURL, Err: err}
	}

	switch code := res.StatusCode(); {
	case code >= 200 && code <= 299:
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
		if err != nil {
			return &ParseError{Format: "forum", Reason: err.Error()}
		}

		if script := doc.Find(`script[src*="saleid"]`).First(); script.Length() > 0 {
			number, _ := strconv.Atoi(trailingDigitsRegex.FindString(script.AttrOr("src", "")))
			s.Set("number", number)
		} else {
			s.Set("number", nil)
		}

		if bar := doc.Find("ul.postTopBar").First(); bar.Length() > 0 {
			if start, ok := parseTime(bar.Find("span").First().AttrOr("utc", "")); ok {
				s.Set("start", start)
			} else {
				s.Set("start", nil)
			}
		} else {
			s.Set("start", nil)
		}

	case code == 302:
		if strings.Contains(forumURL, "://deals") {
			m := dealsSaleIDRegex.FindStringSubmatch(forumURL)
			if m == nil {
				return &ParseError{Format: "forum", Reason: "redirecting deals url carries no sale number"}
			}
			number, _ := strconv.Atoi(m[1])
			s.Set("number", number)
		} else {
			m := querySaleIDRegex.FindStringSubmatch(forumURL)
			if m == nil {
				return &ParseError{Format: "forum", Reason: "redirecting forum url carries no sale number"}
			}
			number, _ := strconv.Atoi(m[1])
			s.Set("number", number)
			s.Set("forum_url", res.Header().Get("Location"))
		}

	default:
		slog.DebugContext(ctx, "forum page returned unexpected status",
			"url", forumURL, "status", code)
	}

	return nil
}

// FetchStats requests the sale statistics script and merges it into the
// sale. The sale number must already be resolved.
func (p *Parser) FetchStats(ctx context.Context, s *sale.Sale) error {
	number, ok := s.Number()
	if !ok {
		return ErrNumberUnresolved
	}

	u := s.Shop().Join(fmt.Sprintf(statsScriptPath, number))
	res, err := p.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	return p.ParseStats(s, res.Body())
}

// Enrich resolves the sale's forum identity and then merges in its
// statistics.
func (p *Parser) Enrich(ctx context.Context, s *sale.Sale) error {
	ctx, span := tracer.Start(ctx, "Enrich")
	defer span.End()

	if err := p.ResolveForum(ctx, s); err != nil {
		return err
	}
	return p.FetchStats(ctx, s)
}
