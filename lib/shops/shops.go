// Package shops holds the static directory of source sites: their base
// host, declared upstream source format and sale lifecycle statuses.
// A Registry is constructed explicitly and passed to whatever needs it,
// there is no package-level instance.
package shops

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "embed"

	"github.com/titanous/json5"

	"wootsync/lib/configutil"
)

var ErrUnknownShop = errors.New("unknown shop")

// Source names the extractor format used for a shop's primary fetch
// along with the path it is served from.
type Source struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

type Shop struct {
	Name     string   `json:"name"`
	Host     string   `json:"host"`
	Epoch    string   `json:"epoch"`
	Source   Source   `json:"source"`
	Statuses []string `json:"statuses"`
}

// DefaultStatus is the first configured status label, representing
// "currently on sale".
func (s *Shop) DefaultStatus() string {
	if len(s.Statuses) == 0 {
		return ""
	}
	return s.Statuses[0]
}

// Join appends a path to the shop's base host.
func (s *Shop) Join(path string) string {
	return strings.TrimSuffix(s.Host, "/") + "/" + strings.TrimPrefix(path, "/")
}

// SourceURL is the full url of the shop's primary source document.
func (s *Shop) SourceURL() string {
	return s.Join(s.Source.Path)
}

// EpochTime parses the shop's earliest valid sale date.
func (s *Shop) EpochTime() (time.Time, error) {
	return time.Parse("2006-01-02", s.Epoch)
}

// HostParts returns the sub, primary and top-level domain components of
// the shop host, excluding any leading "www".
func (s *Shop) HostParts() []string {
	u, err := url.Parse(s.Host)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return strings.Split(host, ".")
}

// Title returns a display name, e.g. "Woot" or "Woot Wine".
func (s *Shop) Title() string {
	name := strings.ToUpper(s.Name[:1]) + s.Name[1:]
	if strings.EqualFold(s.Name, "woot") {
		return name
	}
	return "Woot " + name
}

type Registry struct {
	shops  []*Shop
	byName map[string]*Shop
}

func NewRegistry(shops []*Shop) *Registry {
	r := &Registry{
		shops:  shops,
		byName: make(map[string]*Shop, len(shops)),
	}
	for _, s := range shops {
		r.byName[strings.ToLower(s.Name)] = s
	}
	return r
}

//go:embed settings.json5
var defaultSettings []byte

type settings struct {
	Shops []*Shop `json:"shops"`
}

// Default builds a registry from the embedded settings file.
func Default() (*Registry, error) {
	var cfg settings
	err := json5.Unmarshal(defaultSettings, &cfg)
	if err != nil {
		return nil, err
	}
	return NewRegistry(cfg.Shops), nil
}

// Load reads a registry from a settings file on disk, with `.local`
// overrides applied the usual way.
func Load(path string) (*Registry, error) {
	cfg, err := configutil.ReadConfig[settings](path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(cfg.Shops), nil
}

// Fetch resolves a shop identifier to its Shop. The identifier match is
// case-insensitive.
func (r *Registry) Fetch(name string) (*Shop, error) {
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShop, name)
	}
	return s, nil
}

// ByIndex returns the shop at the given position in configured order.
func (r *Registry) ByIndex(i int) (*Shop, error) {
	if i < 0 || i >= len(r.shops) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownShop, i)
	}
	return r.shops[i], nil
}

// Index returns the position of a shop in configured order, or -1.
func (r *Registry) Index(name string) int {
	for i, s := range r.shops {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}

func (r *Registry) All() []*Shop {
	return r.shops
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.shops))
	for i, s := range r.shops {
		names[i] = s.Name
	}
	return names
}

func (r *Registry) Len() int {
	return len(r.shops)
}
