package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Options carries backend settings that do not belong in a locator string,
// mostly credentials and timeouts sourced from the environment.
type Options struct {
	AWSRegion          string
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	RedisPassword    string
	RedisDialTimeout time.Duration
	EtcdDialTimeout  time.Duration
}

// Locator is a store locator split at its scheme. Body is everything after
// the first colon; Raw is the locator as given.
type Locator struct {
	Scheme string
	Body   string
	Raw    string
}

func (l Locator) String() string {
	return l.Raw
}

// Factory opens the store a locator points at. Implementations return
// ErrNoSuchStore when the locator resolves to nothing and ErrUnavailable when
// the backend cannot be reached.
type Factory func(ctx context.Context, loc Locator, opts Options) (SharedStore, error)

// DefaultScheme handles locators without a registered scheme, such as plain
// directory paths.
const DefaultScheme = "file"

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

// Register associates a factory with a locator scheme. Backends call it from
// init; the most recent registration for a scheme wins.
func Register(scheme string, factory Factory) {
	if scheme == "" {
		panic("storage.Register: scheme must not be empty")
	}
	if factory == nil {
		panic("storage.Register: factory must not be nil")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	factories[strings.ToLower(scheme)] = factory
}

// Schemes lists the registered locator schemes.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(factories))
	for scheme := range factories {
		out = append(out, scheme)
	}
	sort.Strings(out)
	return out
}

func lookup(scheme string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[scheme]
	return f, ok
}

// ParseLocator splits a locator at its scheme. A prefix that is not a
// registered scheme (a bare path, a Windows drive letter) selects
// DefaultScheme with the whole locator as body.
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: empty locator", ErrNoSuchStore)
	}

	if idx := strings.Index(raw, ":"); idx > 0 {
		scheme := strings.ToLower(raw[:idx])
		if _, ok := lookup(scheme); ok {
			return Locator{Scheme: scheme, Body: raw[idx+1:], Raw: raw}, nil
		}
	}
	return Locator{Scheme: DefaultScheme, Body: raw, Raw: raw}, nil
}

// Resolver opens stores through the registered factories.
type Resolver struct {
	opts Options
}

// NewResolver returns a Resolver that hands opts to every factory.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Open resolves a locator. Every failure wraps either ErrNoSuchStore or
// ErrUnavailable.
func (r *Resolver) Open(ctx context.Context, locator string) (SharedStore, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	factory, ok := lookup(loc.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: no backend for scheme %q", ErrNoSuchStore, loc.Scheme)
	}

	store, err := factory(ctx, loc, r.opts)
	if err != nil {
		if !errors.Is(err, ErrNoSuchStore) && !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("open store %s: %w", loc, err)
	}
	return Instrument(loc.Scheme, store), nil
}
