package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/PuerkitoBio/goquery"

	"wootsync/lib/images"
	"wootsync/lib/sale"
	"wootsync/lib/textutil"
)

var (
	docWriteRegex   = regexp.MustCompile(`^document\.write\(["'] *(.*) *["']\);`)
	ddFieldRegex    = regexp.MustCompile(`^[\r\n\t ]*([^>]+): *`)
	paceRegex       = regexp.MustCompile(`(?i)(([0-9.]+)h)? *(([0-9.]+)m)? *(([0-9.]+)s)?`)
	speedRegex      = regexp.MustCompile(`(\d+)m +?([-\d.]+)s`)
	leadingIntRegex = regexp.MustCompile(`^[-+]?\d+`)
	nonDigitRegex   = regexp.MustCompile(`[^\d]`)
)

var clockLayouts = []string{"3:04:05 PM", "3:04 PM", "15:04:05", "15:04"}

// sellout clock times in this range mean the sale ran out of stock; a
// time outside it means the day rolled over with stock remaining
const (
	soldOutFloorSeconds = 90
	soldOutCeilSeconds  = 85800
)

func parseClockSeconds(s string) (int, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
		}
	}
	return 0, false
}

func toInt(s string) int {
	n, _ := strconv.Atoi(leadingIntRegex.FindString(strings.TrimSpace(s)))
	return n
}

func toSeconds(hours, minutes, seconds string) float64 {
	h, _ := strconv.ParseFloat(hours, 64)
	m, _ := strconv.ParseFloat(minutes, 64)
	sec, _ := strconv.ParseFloat(seconds, 64)
	return h*3600 + m*60 + sec
}

// ParseStats merges the sale statistics script into an existing Sale.
// The payload is a javascript fragment that document.write()s an HTML
// blob of dt/dd pairs plus the hourly and daily purchase tables.
func (p *Parser) ParseStats(s *sale.Sale, payload []byte) error {
	unescaped := strings.ReplaceAll(strings.TrimSpace(string(payload)), `\"`, `"`)
	m := docWriteRegex.FindStringSubmatch(unescaped)
	if m == nil {
		return &ParseError{Format: FormatStats, Reason: "missing document.write wrapper"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(m[1]))
	if err != nil {
		return &ParseError{Format: FormatStats, Reason: err.Error()}
	}

	// the shirt shop nests an extra stats div inside the summary list,
	// which closes the dl early and hides the dd entries that follow
	if thread := doc.Find(".saleStats-thread"); thread.Length() > 0 {
		threadHTML, herr := goquery.OuterHtml(thread.First())
		full, ferr := doc.Html()
		if herr == nil && ferr == nil {
			doc, err = goquery.NewDocumentFromReader(strings.NewReader(
				strings.ReplaceAll(full, "</dl>"+threadHTML, "")))
			if err != nil {
				return &ParseError{Format: FormatStats, Reason: err.Error()}
			}
		}
	}

	if img := doc.Find(".thumbnail").First(); img.Length() > 0 {
		imgs := s.Images()
		found := images.Parse(img.AttrOr("src", ""), img.Parent().AttrOr("href", ""))
		if err := mergo.Merge(&imgs, found); err != nil {
			return err
		}
	}

	if a := doc.Find("a#HyperLinkTitle").First(); a.Length() > 0 {
		title, _ := a.Html()
		s.Set("wootcast_title", title)
		s.Set("wootcast_url", a.AttrOr("href", ""))
	}

	saleFinished := false

	if summary := doc.Find("dl.itemSummary").First(); summary.Length() > 0 {
		if dt := summary.Find("dt").First(); dt.Length() > 0 {
			target := dt
			if a := dt.Find("a").First(); a.Length() > 0 {
				target = a
			}
			name, _ := target.Html()
			s.Product()["name"] = strings.TrimSpace(name)
		} else {
			s.Product()["name"] = nil
		}
		if a := summary.Find("dt a").First(); a.Length() > 0 {
			s.Set("blog_url", a.AttrOr("href", ""))
		} else {
			s.Set("blog_url", nil)
		}

		var lastSpeed []string

		summary.Find("dd").Each(func(_ int, dd *goquery.Selection) {
			raw, err := dd.Html()
			if err != nil || !ddFieldRegex.MatchString(raw) {
				return
			}
			fields := strings.SplitN(raw, ":", 2)
			label := strings.TrimSpace(fields[0])
			var value string
			if len(fields) > 1 {
				value = strings.TrimSpace(fields[1])
			}

			switch {
			case textutil.MatchName(label, []string{"blame", "lastwooter"}):
				s.Set("blame", value)
				if strings.Contains(textutil.NormalizeName(label), "sellout") {
					s.SetStatus(sale.StatusSoldOut)
				}

			case textutil.MatchName(label, []string{"pace"}):
				if m := paceRegex.FindStringSubmatch(value); m != nil {
					s.Set("pace", toSeconds(m[2], m[4], m[6]))
				}

			case textutil.MatchName(label, []string{"quantity", "wootssold", "totalwoots"}):
				s.Set("quantity", toInt(value))
				if strings.Contains(textutil.NormalizeName(label), "totalwoots") {
					s.SetStatus(sale.StatusSoldOut)
				}

			case textutil.MatchName(label, []string{"sellouttime", "lastpurchasetime"}):
				s.Set("end", value)
				if strings.Contains(textutil.NormalizeName(label), "sellouttime") {
					s.SetStatus(sale.StatusSoldOut)
					saleFinished = true
				}

			case textutil.MatchName(label, []string{"speed"}):
				lastSpeed = speedRegex.FindStringSubmatch(value)

			case textutil.MatchName(label, []string{"sucker"}):
				s.Set("sucker", value)

			case textutil.MatchName(label, []string{"wage"}):
				s.Set("wage", toInt(nonDigitRegex.ReplaceAllString(value, "")))
			}
		})

		if lastSpeed != nil {
			s.Set("speed", toSeconds("", lastSpeed[1], lastSpeed[2]))
		} else {
			s.Set("speed", nil)
		}

		doc.Find("table.hours td").Each(func(i int, td *goquery.Selection) {
			title := td.Find("div").First().AttrOr("title", "0")
			s.Set(fmt.Sprintf("hour_%02d", i), float64(toInt(title))/100)
		})

		days := []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
		doc.Find("table.days td").Each(func(i int, td *goquery.Selection) {
			if i >= len(days) {
				return
			}
			title := td.Find("div").First().AttrOr("title", "0")
			s.Set("day_"+days[i], float64(toInt(title))/100)
		})
	}

	if full, err := doc.Html(); err == nil {
		for i, label := range []string{"one", "two", "three"} {
			re := regexp.MustCompile(fmt.Sprintf(`(?i)(\d+)%% +bought +%d`, i+1))
			if m := re.FindStringSubmatch(full); m != nil {
				s.Set("bought_"+label, float64(toInt(m[1]))/100)
			}
		}
	}

	// a sellout time field pins the outcome; otherwise classify by how
	// far into the day the last purchase landed
	if end, ok := s.Get("end").(string); !saleFinished && ok && end != "" {
		if secs, ok := parseClockSeconds(end); ok {
			if secs >= soldOutFloorSeconds && secs < soldOutCeilSeconds {
				s.SetStatus(sale.StatusSoldOut)
			} else {
				s.SetStatus(sale.StatusEnded)
			}
		}
	}

	if s.Status() == "" {
		s.SetStatus(s.Shop().DefaultStatus())
	}

	if !s.OnSale() {
		s.ClearActiveFields()
	}
	return nil
}
