package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wootsync/lib/sale"
	"wootsync/lib/shops"
)

// The selector rules below are load-bearing against the fixed upstream
// page structure; do not tidy them.
var (
	productLabelRegex = regexp.MustCompile(`(?i)^product`)
	productEntryRegex = regexp.MustCompile(`(\d+)[ \r\t\n]+([^<\n\r\t]+)`)
	saleIDRegex       = regexp.MustCompile(`(?i)wootsaleid=(\d+)`)
	soldOutClassRegex = regexp.MustCompile(`(?i)soldOut`)
	barWidthRegex     = regexp.MustCompile(`(?i)width: ?(\d+)%`)
)

// FromHomepage extracts a Sale from a shop's HTML homepage.
func (p *Parser) FromHomepage(shop *shops.Shop, payload []byte) (*sale.Sale, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, &ParseError{Format: FormatHomepage, Reason: "empty body"}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &ParseError{Format: FormatHomepage, Reason: err.Error()}
	}

	desc := doc.Find("div.productDescription").First()
	nameSel := desc.Find("h2").First()
	if nameSel.Length() == 0 {
		return nil, &ParseError{Format: FormatHomepage, Reason: "missing product name"}
	}
	name, _ := nameSel.Html()

	var products []any
	desc.Find("dl").First().Find("dt").Each(func(_ int, dt *goquery.Selection) {
		if !productLabelRegex.MatchString(strings.TrimSpace(dt.Text())) {
			return
		}
		entry, _ := dt.Next().Html()
		m := productEntryRegex.FindStringSubmatch(entry)
		if m == nil {
			return
		}
		quantity, _ := strconv.Atoi(m[1])
		products = append(products, map[string]any{
			"quantity": quantity,
			"name":     strings.TrimSpace(m[2]),
		})
	})

	images := map[string]string{}
	if photo := doc.Find("img.photo").First(); photo.Length() > 0 {
		images["detail"] = photo.Parent().AttrOr("href", "")
		images["standard"] = photo.AttrOr("src", "")
	}

	priceSel := desc.Find("span.amount").First()
	if priceSel.Length() == 0 {
		return nil, &ParseError{Format: FormatHomepage, Reason: "missing price"}
	}
	price, _ := priceSel.Html()

	condition, _ := desc.Find("dd").First().Html()
	description, _ := doc.Find("div.writeUp").First().Html()
	shipping, _ := doc.Find("ul#shippingOptions li").First().Html()
	title, _ := doc.Find("div.story h2").First().Html()

	attrs := map[string]any{
		"product": map[string]any{
			"name":     name,
			"products": products,
			"images":   images,
		},
		"condition":   strings.TrimSpace(condition),
		"description": strings.TrimSpace(description),
		"launch":      doc.Find(`div[id$=LaunchPanel]`).Length() > 0,
		"price":       strings.TrimPrefix(strings.TrimSpace(price), "$"),
		"shipping":    shipping,
		"shop":        shop.Name,
		"title":       strings.TrimSpace(title),
	}

	if forum := doc.Find("li.discuss a").First(); forum.Length() > 0 {
		attrs["forum_url"] = forum.AttrOr("href", "")
	} else {
		attrs["forum_url"] = nil
	}

	if m := saleIDRegex.FindSubmatch(payload); m != nil {
		number, _ := strconv.Atoi(string(m[1]))
		attrs["number"] = number
	} else {
		attrs["number"] = nil
	}

	link := doc.Find(`a[id$=HyperLinkWantOne]`).First()
	if link.Length() == 0 {
		return nil, &ParseError{Format: FormatHomepage, Reason: "missing buy link"}
	}
	class := link.AttrOr("class", "")
	if soldOutClassRegex.MatchString(class) {
		attrs["status"] = sale.StatusSoldOut
	} else {
		attrs["status"] = shop.DefaultStatus()
		attrs["urgent"] = strings.Contains(class, "urgent")
		if href := link.AttrOr("href", ""); href != "" {
			attrs["purchase_url"] = href
		}
	}

	if bar := doc.Find(`div[id$=ProgressBar]`); bar.Length() > 0 {
		style := bar.Find("div.wootOffProgressBarValue").First().AttrOr("style", "")
		if m := barWidthRegex.FindStringSubmatch(style); m != nil {
			progress, _ := strconv.Atoi(m[1])
			attrs["progress"] = progress
		}
	}

	return sale.New(p.reg, attrs)
}
