package parser

import (
	"regexp"
	"strconv"
	"strings"

	"wootsync/lib/sale"
	"wootsync/lib/shops"
)

var (
	percentRegex       = regexp.MustCompile(`(\d*)%?`)
	leadingNumberRegex = regexp.MustCompile(`^[-+]?\d*\.?\d+`)
)

// FromSummary extracts a Sale from a microsummary line. The line is a
// colon-separated record, with a leading progress field present only
// during multi-item events:
//
//	29% : $49.99 : Some Product : On Sale
//	$49.99 : Some Product : On Sale
func (p *Parser) FromSummary(shop *shops.Shop, payload []byte) (*sale.Sale, error) {
	parts := strings.Split(strings.TrimSpace(string(payload)), " : ")
	if len(parts) < 2 {
		return nil, &ParseError{Format: FormatSummary, Reason: "too few fields"}
	}

	attrs := map[string]any{"shop": shop.Name}

	wootoff := strings.Contains(parts[0], "%")
	attrs["wootoff"] = wootoff
	if wootoff {
		m := percentRegex.FindStringSubmatch(parts[0])
		progress, _ := strconv.Atoi(m[1])
		attrs["progress"] = progress
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return nil, &ParseError{Format: FormatSummary, Reason: "too few fields"}
	}

	// lenient like a cast, so "$12.99 + tax" still yields 12.99
	price, _ := strconv.ParseFloat(leadingNumberRegex.FindString(strings.TrimPrefix(strings.TrimSpace(parts[0]), "$")), 64)
	attrs["price"] = price

	product := map[string]any{"name": strings.TrimSpace(parts[1])}
	attrs["product"] = product

	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		attrs["status"] = strings.TrimSpace(parts[2])
	} else {
		attrs["status"] = shop.DefaultStatus()
	}

	return sale.New(p.reg, attrs)
}
