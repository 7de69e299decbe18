package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const homepageFixture = `<html><body>
<div class="story"><h2>Shake It Up</h2></div>
<div class="productDescription">
	<h2>Sansa Shaker 512 MB MP3 Player</h2>
	<span class="amount">$14.99</span>
	<dl>
		<dt>Condition:</dt><dd>Refurbished</dd>
		<dt>Product:</dt><dd>2 Sansa Shaker</dd>
	</dl>
</div>
<a href="http://sale.images.woot.com/shaker-detail.jpg"><img class="photo" src="http://sale.images.woot.com/shaker-standard.jpg"></a>
<div class="writeUp">A fine little shaker.</div>
<ul id="shippingOptions"><li>$5 Standard</li></ul>
<li class="discuss"><a href="http://www.woot.com/Forums/ViewPost.aspx?WootSaleId=12345">Discuss</a></li>
<a id="ctl00_HyperLinkWantOne" class="wantOne urgent" href="http://www.woot.com/WantOne.aspx">I want one!</a>
<div id="ctl00_ProgressBar"><div class="wootOffProgressBarValue" style="width: 37%"></div></div>
</body></html>`

func TestFromHomepage(t *testing.T) {
	p := testParser(t)
	shop, err := p.Registry().Fetch("wine")
	require.NoError(t, err)

	s, err := p.FromHomepage(shop, []byte(homepageFixture))
	require.NoError(t, err)

	require.Equal(t, "Sansa Shaker 512 MB MP3 Player", s.Name())
	require.Equal(t, "14.99", s.Get("price"))
	require.Equal(t, "Refurbished", s.Get("condition"))
	require.Equal(t, "A fine little shaker.", s.Get("description"))
	require.Equal(t, "Shake It Up", s.Get("title"))

	number, ok := s.Number()
	require.True(t, ok)
	require.Equal(t, 12345, number)
	require.Equal(t, "http://www.woot.com/Forums/ViewPost.aspx?WootSaleId=12345", s.ForumURL())

	require.True(t, s.OnSale())
	require.True(t, s.Urgent())
	require.Equal(t, "http://www.woot.com/WantOne.aspx", s.PurchaseURL())

	progress, ok := s.Progress()
	require.True(t, ok)
	require.Equal(t, 37.0, progress)

	require.Equal(t, "http://sale.images.woot.com/shaker-standard.jpg", s.Images()["standard"])
	require.Equal(t, "http://sale.images.woot.com/shaker-detail.jpg", s.Images()["detail"])

	products := s.Products()
	require.Len(t, products, 1)
	require.Equal(t, map[string]any{"quantity": 2, "name": "Sansa Shaker"}, products[0])
}

func TestFromHomepageSoldOut(t *testing.T) {
	p := testParser(t)
	shop, err := p.Registry().Fetch("wine")
	require.NoError(t, err)

	fixture := `<html><body>
<div class="productDescription"><h2>Gone Thing</h2><span class="amount">$9.99</span></div>
<a id="ctl00_HyperLinkWantOne" class="soldOut" href="#"></a>
</body></html>`

	s, err := p.FromHomepage(shop, []byte(fixture))
	require.NoError(t, err)
	require.True(t, s.SoldOut())
	require.False(t, s.Urgent())
	require.Empty(t, s.PurchaseURL())

	// key present but empty, so downstream comparisons still see it
	require.Contains(t, s.Attributes(), "forum_url")
	require.Nil(t, s.Get("forum_url"))
	require.Nil(t, s.Get("number"))
}

func TestFromHomepageMalformed(t *testing.T) {
	p := testParser(t)
	shop, err := p.Registry().Fetch("wine")
	require.NoError(t, err)

	cases := []struct {
		name    string
		payload string
	}{
		{"empty body", "   "},
		{"missing name", `<div class="productDescription"><span class="amount">$1</span></div><a id="x_HyperLinkWantOne"></a>`},
		{"missing price", `<div class="productDescription"><h2>Thing</h2></div><a id="x_HyperLinkWantOne"></a>`},
		{"missing buy link", `<div class="productDescription"><h2>Thing</h2><span class="amount">$1</span></div>`},
	}
	for _, c := range cases {
		_, err := p.FromHomepage(shop, []byte(c.payload))
		require.Error(t, err, c.name)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, c.name)
		require.Equal(t, FormatHomepage, perr.Format, c.name)
	}
}
