package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"wootsync/lib/sale"
)

func newStatsSale(t *testing.T, p *Parser, attrs map[string]any) *sale.Sale {
	t.Helper()
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrs["shop"] = "woot"
	s, err := sale.New(p.Registry(), attrs)
	require.NoError(t, err)
	return s
}

const statsFixture = `document.write("<div class=\"saleStats\">` +
	`<a href=\"http://sale.images.woot.com/shaker-detail.jpg\"><img class=\"thumbnail\" src=\"http://sale.images.woot.com/shaker-thumbnail.jpg\"></a>` +
	`<dl class=\"itemSummary\">` +
	`<dt><a href=\"http://www.woot.com/Blog/Post/1\">Sansa Shaker 512 MB MP3 Player</a></dt>` +
	`<dd>Woots Sold: 1500</dd>` +
	`<dd>Sellout Time: 2:35:12 AM</dd>` +
	`<dd>Pace: 1h 2m 3s</dd>` +
	`<dd>Speed: 5m 12.5s</dd>` +
	`<dd>Sucker: wooter123</dd>` +
	`<dd>Wage: $7.25/hr</dd>` +
	`</dl>` +
	`<table class=\"hours\"><tr><td><div title=\"37\"></div></td><td><div title=\"64\"></div></td></tr></table>` +
	`<table class=\"days\"><tr><td><div title=\"12\"></div></td><td><div title=\"88\"></div></td></tr></table>` +
	`<p>25% bought 1, 60% bought 2, 90% bought 3</p>` +
	`</div>");`

func TestParseStats(t *testing.T) {
	p := testParser(t)
	s := newStatsSale(t, p, map[string]any{
		"status":   "On Sale",
		"progress": 80,
		"urgent":   true,
	})

	require.NoError(t, p.ParseStats(s, []byte(statsFixture)))

	require.Equal(t, "Sansa Shaker 512 MB MP3 Player", s.Name())
	require.Equal(t, "http://www.woot.com/Blog/Post/1", s.BlogURL())
	require.Equal(t, 1500, s.Get("quantity"))
	require.Equal(t, "2:35:12 AM", s.Get("end"))
	require.Equal(t, 1*3600+2*60+3.0, s.Get("pace"))
	require.Equal(t, 5*60+12.5, s.Get("speed"))
	require.Equal(t, "wooter123", s.Get("sucker"))
	require.Equal(t, 725, s.Get("wage"))

	require.Equal(t, map[string]string{
		"thumbnail": "http://sale.images.woot.com/shaker-thumbnail.jpg",
		"detail":    "http://sale.images.woot.com/shaker-detail.jpg",
	}, s.Images())

	require.Equal(t, 0.37, s.Get("hour_00"))
	require.Equal(t, 0.64, s.Get("hour_01"))
	require.Equal(t, 0.12, s.Get("day_mon"))
	require.Equal(t, 0.88, s.Get("day_tue"))
	require.Equal(t, 0.25, s.Get("bought_one"))
	require.Equal(t, 0.60, s.Get("bought_two"))
	require.Equal(t, 0.90, s.Get("bought_three"))

	// a sellout time pins the status, which clears the active fields
	require.True(t, s.SoldOut())
	require.Nil(t, s.Get("progress"))
	require.Nil(t, s.Get("purchase_url"))
	require.Equal(t, false, s.Get("urgent"))
}

func TestParseStatsKeepsExistingImages(t *testing.T) {
	p := testParser(t)
	s := newStatsSale(t, p, map[string]any{
		"product": map[string]any{
			"images": map[string]string{"thumbnail": "http://already/有.jpg"},
		},
	})

	require.NoError(t, p.ParseStats(s, []byte(statsFixture)))
	require.Equal(t, "http://already/有.jpg", s.Images()["thumbnail"])
	require.Equal(t, "http://sale.images.woot.com/shaker-detail.jpg", s.Images()["detail"])
}

func TestParseStatsEndTimeHeuristic(t *testing.T) {
	p := testParser(t)

	cases := []struct {
		end  string
		want string
	}{
		{"12:00:45 AM", "Ended"},    // 45s in, day rolled over
		{"12:05:00 AM", "Sold Out"}, // 300s in
		{"2:35:12 AM", "Sold Out"},
		{"11:51:00 PM", "Ended"}, // 85860s, past the cutoff
	}
	for _, c := range cases {
		payload := fmt.Sprintf(`document.write("<dl class=\"itemSummary\"><dt>Thing</dt><dd>Last Purchase Time: %s</dd></dl>");`, c.end)
		s := newStatsSale(t, p, nil)
		require.NoError(t, p.ParseStats(s, []byte(payload)))
		require.Equal(t, c.want, s.Status(), c.end)
	}
}

func TestParseStatsDefaultsStatus(t *testing.T) {
	p := testParser(t)
	s := newStatsSale(t, p, nil)
	require.NoError(t, p.ParseStats(s, []byte(`document.write("<p>nothing here</p>");`)))
	require.True(t, s.OnSale())
}

func TestParseStatsRejectsUnwrappedPayload(t *testing.T) {
	p := testParser(t)
	s := newStatsSale(t, p, map[string]any{"status": "On Sale"})

	err := p.ParseStats(s, []byte(`<dl class="itemSummary"></dl>`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, FormatStats, perr.Format)
	// the sale is untouched on a parse failure
	require.True(t, s.OnSale())
}
