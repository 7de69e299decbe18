package sale

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"wootsync/lib/textutil"
)

// Comparison classifies the relationship between two snapshots of what
// is nominally the same sale.
type Comparison int

const (
	// Changed is a substantive change not tied to a unique field.
	Changed Comparison = iota - 1
	// Unchanged means the normalized snapshots are identical.
	Unchanged
	// NewIdentity is a change to a unique-identifying field: the slot is
	// now tracking a different underlying sale.
	NewIdentity
	// ProgressOnly is a lower-priority change used for wootoff progress
	// ticks.
	ProgressOnly
)

func (c Comparison) String() string {
	switch c {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	case NewIdentity:
		return "new identity"
	case ProgressOnly:
		return "progress only"
	}
	return "unknown"
}

// UniqueFields are the attributes whose change implies the record now
// refers to a different underlying sale rather than an update to the
// same one.
var UniqueFields = []string{"forum_url", "number", "blog_url"}

var priceRegex = regexp.MustCompile(`^\$?(.*)`)

func normalizePrice(v any) decimal.Decimal {
	switch p := v.(type) {
	case decimal.Decimal:
		return p
	case float64:
		return decimal.NewFromFloat(p)
	case int:
		return decimal.NewFromInt(int64(p))
	case string:
		m := priceRegex.FindStringSubmatch(strings.TrimSpace(p))
		if m == nil {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// Price coerces the price attribute to a decimal, stripping a leading
// currency symbol. Unparseable values coerce to zero.
func (s *Sale) Price() decimal.Decimal {
	return normalizePrice(s.attrs["price"])
}

// normalize projects the attributes relevant for change detection:
// unique fields verbatim, a tokenized upper-cased product name, the
// upper-cased status, and the price as a decimal. Progress is included
// only when requested (wootoff comparisons), counting as 0 once the
// sale is no longer active.
func (s *Sale) normalize(withProgress bool) map[string]any {
	out := map[string]any{}
	for _, field := range UniqueFields {
		if v, ok := s.attrs[field]; ok {
			out[field] = v
		}
	}

	name, _ := s.Product()["name"].(string)
	out["name"] = strings.ToUpper(textutil.Tokenize(name))
	out["status"] = strings.ToUpper(s.Status())
	out["price"] = normalizePrice(s.attrs["price"])

	if withProgress {
		progress := 0.0
		if s.OnSale() {
			progress, _ = s.Progress()
		}
		out["progress"] = progress
	}

	return out
}

func valueEqual(a, b any) bool {
	if ad, ok := a.(decimal.Decimal); ok {
		bd, ok := b.(decimal.Decimal)
		return ok && ad.Equal(bd)
	}
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Compare classifies the delta between two snapshots. Identity changes
// take precedence over a simultaneous progress tick, and a progress-only
// tick is demoted below any other field change even when progress also
// moved.
func Compare(was, now *Sale) Comparison {
	withProgress := was.Wootoff() || now.Wootoff()
	a := was.normalize(withProgress)
	b := now.normalize(withProgress)

	var changes []string
	for field, v := range a {
		other, ok := b[field]
		if !ok {
			continue
		}
		if !valueEqual(v, other) {
			slog.Debug("attribute changed", "field", field, "was", v, "now", other)
			changes = append(changes, field)
		}
	}

	switch {
	case len(changes) == 0:
		return Unchanged
	case len(slicesIntersect(changes, UniqueFields)) > 0:
		return NewIdentity
	case len(changes) == 1 && changes[0] == "progress":
		return ProgressOnly
	default:
		return Changed
	}
}

func slicesIntersect(a, b []string) []string {
	var out []string
	for _, v := range a {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}
