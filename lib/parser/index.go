package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"wootsync/lib/htmlutil"
	"wootsync/lib/sale"
	"wootsync/lib/shops"
)

// FetchIndex scrapes one page of a shop's forum listing into skeletal
// sales, newest first. The listing only carries identity fields, so the
// results are inputs for ResolveSale rather than finished records.
func (p *Parser) FetchIndex(ctx context.Context, shop *shops.Shop, page int) ([]*sale.Sale, error) {
	indexURL := shop.Join(fmt.Sprintf("Forums/Default.aspx?p=%d", page))
	res, err := p.client.R().SetContext(ctx).Get(indexURL)
	if err != nil {
		return nil, &FetchError{URL: indexURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, &ParseError{Format: "index", Reason: err.Error()}
	}

	var sales []*sale.Sale
	var perr error

	doc.Find("div.forumList").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		name := item.Find("h3 a").First()
		img := item.Find("a.lightBox img").First()
		if name.Length() == 0 || img.Length() == 0 {
			perr = &ParseError{Format: "index", Reason: "forum listing entry is missing its title or thumbnail"}
			return false
		}

		attrs := map[string]any{
			"product": map[string]any{
				"name": htmlutil.CleanText(name.Text()),
				"images": map[string]string{
					"thumbnail": img.AttrOr("src", ""),
					"detail":    img.Parent().AttrOr("href", ""),
				},
			},
			"forum_url": shop.Join("Forums/" + name.AttrOr("href", "")),
			"shop":      shop.Name,
		}

		if blog := item.Find(`a[title=blog]`).First(); blog.Length() > 0 {
			attrs["blog_url"] = blog.AttrOr("href", "")
		} else {
			attrs["blog_url"] = nil
		}
		if wootcast := item.Find(`a[title=wootcast]`).First(); wootcast.Length() > 0 {
			attrs["wootcast_url"] = wootcast.AttrOr("href", "")
		} else {
			attrs["wootcast_url"] = nil
		}

		if h4 := item.Find("h4").First(); h4.Length() > 0 && len(h4.Nodes) > 0 {
			if start, ok := parseTime(htmlutil.GetText(h4.Nodes[0])); ok {
				attrs["start"] = start
			}
		}

		s, err := sale.New(p.reg, attrs)
		if err != nil {
			perr = err
			return false
		}
		sales = append(sales, s)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return sales, nil
}
