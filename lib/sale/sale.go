// Package sale holds the canonical in-memory representation of one
// tracked sale: an open attribute mapping behind typed accessors, the
// status predicates and the snapshot comparator.
package sale

import (
	"errors"
	"fmt"

	"wootsync/lib/shops"
)

// Lifecycle labels every shop's status list carries after its active
// labels.
const (
	StatusSoldOut = "Sold Out"
	StatusEnded   = "Ended"
)

var ErrNoShop = errors.New("attributes must include a resolvable shop")

// Sale is a value object owned by its caller. It is mutated in place
// during enrichment and must not be mutated after being compared.
type Sale struct {
	shop  *shops.Shop
	attrs map[string]any
}

// New wraps an attribute mapping as a Sale. The mapping must name a shop
// known to the registry, either as a string or as a nested mapping with
// a "name" key.
func New(reg *shops.Registry, attrs map[string]any) (*Sale, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}

	var name string
	switch v := attrs["shop"].(type) {
	case string:
		name = v
	case map[string]any:
		name, _ = v["name"].(string)
	}
	if name == "" {
		return nil, ErrNoShop
	}

	shop, err := reg.Fetch(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoShop, err)
	}

	return &Sale{shop: shop, attrs: attrs}, nil
}

func (s *Sale) Shop() *shops.Shop { return s.shop }

// Attributes exposes the underlying mapping. The enrichment pipeline
// merges into it directly; callers must serialize access per sale.
func (s *Sale) Attributes() map[string]any { return s.attrs }

func (s *Sale) Get(key string) any { return s.attrs[key] }

func (s *Sale) Set(key string, value any) { s.attrs[key] = value }

// Product returns the nested product group, creating it when absent.
func (s *Sale) Product() map[string]any {
	p, ok := s.attrs["product"].(map[string]any)
	if !ok {
		p = map[string]any{}
		s.attrs["product"] = p
	}
	return p
}

func (s *Sale) Name() string {
	if p, ok := s.attrs["product"].(map[string]any); ok {
		name, _ := p["name"].(string)
		return name
	}
	return ""
}

// Images returns the product image mapping keyed by role suffix,
// creating it when absent.
func (s *Sale) Images() map[string]string {
	p := s.Product()
	imgs, ok := p["images"].(map[string]string)
	if !ok {
		imgs = map[string]string{}
		p["images"] = imgs
	}
	return imgs
}

func (s *Sale) Status() string {
	status, _ := s.attrs["status"].(string)
	return status
}

func (s *Sale) SetStatus(label string) { s.attrs["status"] = label }

func (s *Sale) StatusIs(label string) bool { return s.Status() == label }

// OnSale reports whether the status equals the shop's default/active
// label.
func (s *Sale) OnSale() bool { return s.StatusIs(s.shop.DefaultStatus()) }

func (s *Sale) SoldOut() bool { return s.StatusIs(StatusSoldOut) }

func (s *Sale) Ended() bool { return s.StatusIs(StatusEnded) }

func (s *Sale) Finished() bool { return s.SoldOut() || s.Ended() }

// Number returns the integer sale id, which may be absent until the
// forum resolution step has run.
func (s *Sale) Number() (int, bool) {
	switch v := s.attrs["number"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (s *Sale) ForumURL() string {
	u, _ := s.attrs["forum_url"].(string)
	return u
}

func (s *Sale) BlogURL() string {
	u, _ := s.attrs["blog_url"].(string)
	return u
}

func (s *Sale) PurchaseURL() string {
	u, _ := s.attrs["purchase_url"].(string)
	return u
}

// Products returns the quantity/name entries listed for multi-part
// sales, if any.
func (s *Sale) Products() []any {
	products, _ := s.Product()["products"].([]any)
	return products
}

func (s *Sale) Urgent() bool {
	urgent, _ := s.attrs["urgent"].(bool)
	return urgent
}

// Progress returns the mid-event sellout percentage, 0-100.
func (s *Sale) Progress() (float64, bool) {
	switch v := s.attrs["progress"].(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Wootoff reports whether this is a themed multi-item event rather than
// a single daily sale.
func (s *Sale) Wootoff() bool {
	if on, ok := s.attrs["wootoff"].(bool); ok && on {
		return true
	}
	if id, ok := s.attrs["wootoff_id"]; ok && id != nil && id != "" {
		return true
	}
	return false
}

// ClearActiveFields invalidates the fields that only make sense while a
// sale is still purchasable. A sale that has ended cannot report
// purchase availability.
func (s *Sale) ClearActiveFields() {
	s.attrs["progress"] = nil
	s.attrs["purchase_url"] = nil
	s.attrs["urgent"] = false
}
