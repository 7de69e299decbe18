package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"wootsync/lib/sale"
	"wootsync/lib/shops"
)

// Extract dispatches a raw source payload to the extractor declared by
// the shop's source format.
func (p *Parser) Extract(shop *shops.Shop, payload []byte) (*sale.Sale, error) {
	switch shop.Source.Format {
	case FormatHomepage:
		return p.FromHomepage(shop, payload)
	case FormatFeed:
		return p.FromFeed(shop, payload)
	case FormatSummary:
		return p.FromSummary(shop, payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceTag, shop.Source.Format)
	}
}

// FetchSource requests a shop's current sale payload and extracts it.
func (p *Parser) FetchSource(ctx context.Context, shop *shops.Shop) (*sale.Sale, error) {
	sourceURL := shop.SourceURL()
	res, err := p.client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return nil, &FetchError{URL: sourceURL, Err: err}
	}
	return p.Extract(shop, res.Body())
}

func hostKey(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func (p *Parser) shopForURL(raw string) (*shops.Shop, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, shop := range p.reg.All() {
		base, err := url.Parse(shop.Host)
		if err != nil {
			continue
		}
		if hostKey(u.Hostname()) == hostKey(base.Hostname()) {
			return shop, nil
		}
	}
	return nil, fmt.Errorf("%w: no shop hosted at %q", shops.ErrUnknownShop, u.Hostname())
}

// ResolveSale turns any accepted input into a fully populated Sale:
//
//   - a *sale.Sale or attribute map is taken as-is
//   - a *shops.Shop or shop name has its source fetched and extracted
//   - a forum url seeds an empty sale for that url's shop, then
//     resolves the number from the forum page
//
// A sale that is no longer on sale, or any sale when withStats is set,
// is additionally enriched with its statistics. The partially resolved
// sale is returned alongside a non-nil error so callers can inspect how
// far it got.
func (p *Parser) ResolveSale(ctx context.Context, input any, withStats bool) (*sale.Sale, error) {
	ctx, span := tracer.Start(ctx, "ResolveSale")
	defer span.End()

	var s *sale.Sale
	var err error

	switch v := input.(type) {
	case *sale.Sale:
		s = v
	case map[string]any:
		s, err = sale.New(p.reg, v)
	case *shops.Shop:
		s, err = p.FetchSource(ctx, v)
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			var shop *shops.Shop
			if shop, err = p.shopForURL(v); err == nil {
				if s, err = sale.New(p.reg, map[string]any{"shop": shop.Name, "forum_url": v}); err == nil {
					err = p.ResolveForum(ctx, s)
				}
			}
		} else {
			var shop *shops.Shop
			if shop, err = p.reg.Fetch(v); err == nil {
				s, err = p.FetchSource(ctx, shop)
			}
		}
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidInput, input)
	}
	if err != nil {
		return s, err
	}

	if !s.OnSale() || withStats {
		slog.DebugContext(ctx, "enriching sale",
			"shop", s.Shop().Name, "status", s.Status())
		if err := p.Enrich(ctx, s); err != nil {
			return s, err
		}
	}
	return s, nil
}
