package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"wootsync/lib/sale"
	"wootsync/lib/shops"
)

var guidSaleIDRegex = regexp.MustCompile(`(?i)WootSaleId=(\d+)`)

// FromFeed extracts a Sale from an item of a shop's sale feed.
func (p *Parser) FromFeed(shop *shops.Shop, payload []byte) (*sale.Sale, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, &ParseError{Format: FormatFeed, Reason: err.Error()}
	}

	item := xmlquery.FindOne(doc, "//item")
	if item == nil {
		return nil, &ParseError{Format: FormatFeed, Reason: "missing item node"}
	}

	var perr error
	text := func(path string) string {
		n := xmlquery.FindOne(item, path)
		if n == nil {
			if perr == nil {
				perr = &ParseError{Format: FormatFeed, Reason: fmt.Sprintf("missing %s node", path)}
			}
			return ""
		}
		return n.InnerText()
	}

	var products []any
	for _, n := range xmlquery.Find(item, "product") {
		products = append(products, fmt.Sprintf("%s %s", n.SelectAttr("quantity"), n.InnerText()))
	}

	attrs := map[string]any{
		"product": map[string]any{
			"name":     text("title"),
			"products": products,
			"images": map[string]string{
				"detail":    text("detailimage"),
				"standard":  text("standardimage"),
				"thumbnail": text("thumbnailimage"),
			},
		},

		"condition":    text("condition"),
		"description":  strings.TrimSpace(text("description")),
		"forum_url":    text("discussionurl"),
		"price":        strings.TrimPrefix(strings.TrimSpace(text("price")), "$"),
		"purchase_url": text("purchaseurl"),
		"shipping":     text("shipping"),
		"shop":         shop.Name,
		"title":        text("subtitle"),
	}

	if m := guidSaleIDRegex.FindStringSubmatch(text("guid")); m != nil {
		number, _ := strconv.Atoi(m[1])
		attrs["number"] = number
	} else {
		attrs["number"] = nil
	}

	if b := xmlquery.FindOne(item, "blogurl"); b != nil {
		attrs["blog_url"] = b.InnerText()
	} else {
		attrs["blog_url"] = nil
	}

	if enclosure := xmlquery.FindOne(item, "enclosure"); enclosure != nil {
		attrs["wootcast_url"] = enclosure.SelectAttr("url")
	} else {
		attrs["wootcast_url"] = nil
	}

	soldOutFraction, _ := strconv.ParseFloat(strings.TrimSpace(text("soldoutpercentage")), 64)
	attrs["progress"] = int((1 - soldOutFraction) * 100)

	if strings.EqualFold(strings.TrimSpace(text("soldout")), "true") {
		attrs["status"] = sale.StatusSoldOut
	} else {
		attrs["status"] = shop.DefaultStatus()
	}

	wootoff := strings.EqualFold(strings.TrimSpace(text("wootoff")), "true")
	attrs["wootoff"] = wootoff

	// a themed multi-item event reuses the item slot all day, so its
	// start time lives on the channel instead
	var pubDate *xmlquery.Node
	if wootoff {
		pubDate = xmlquery.FindOne(doc, "//channel/pubDate")
	} else {
		pubDate = xmlquery.FindOne(item, "pubDate")
	}
	if pubDate == nil {
		return nil, &ParseError{Format: FormatFeed, Reason: "missing pubDate node"}
	}
	if start, ok := parseTime(strings.TrimSuffix(strings.TrimSpace(pubDate.InnerText()), "GMT")); ok {
		attrs["start"] = start
	}

	if perr != nil {
		return nil, perr
	}

	return sale.New(p.reg, attrs)
}
