package etcd

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"leaderkill/pkg/storage"
)

// DefaultPrefix is used when an etcd locator carries no path.
const DefaultPrefix = "/jobstore/"

func init() {
	storage.Register("etcd", Open)
}

type EtcdStore struct {
	client *clientv3.Client
	prefix string
}

// Open handles etcd://host:port[,host:port]/prefix locators.
func Open(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
	endpoints, prefix, err := parseLocator(loc.Body)
	if err != nil {
		return nil, err
	}
	return NewEtcdStore(ctx, endpoints, prefix, opts.EtcdDialTimeout)
}

func parseLocator(body string) ([]string, string, error) {
	body = strings.TrimPrefix(body, "//")
	hosts, path, _ := strings.Cut(body, "/")

	var endpoints []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			endpoints = append(endpoints, h)
		}
	}
	if len(endpoints) == 0 {
		return nil, "", fmt.Errorf("%w: etcd locator names no endpoints", storage.ErrNoSuchStore)
	}

	prefix := DefaultPrefix
	if path = strings.Trim(path, "/"); path != "" {
		prefix = "/" + path + "/"
	}
	return endpoints, prefix, nil
}

func NewEtcdStore(ctx context.Context, endpoints []string, prefix string, dialTimeout time.Duration) (*EtcdStore, error) {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to etcd: %w", storage.ErrUnavailable, err)
	}

	s := &EtcdStore{client: cli, prefix: prefix}

	// The client dials lazily, so the existence check doubles as the
	// connectivity check.
	checkCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	resp, err := cli.Get(checkCtx, prefix, clientv3.WithPrefix(), clientv3.WithCountOnly())
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("%w: failed to list %s: %w", storage.ErrUnavailable, prefix, err)
	}
	if resp.Count == 0 {
		cli.Close()
		return nil, fmt.Errorf("%w: no keys under %s", storage.ErrNoSuchStore, prefix)
	}
	return s, nil
}

func (s *EtcdStore) Close() error {
	return s.client.Close()
}

func (s *EtcdStore) ReadSharedFile(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.Get(ctx, s.prefix+name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", storage.ErrUnavailable, name, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	return resp.Kvs[0].Value, nil
}

// WriteSharedFile puts the record without a lease; the flag has to outlive
// this process.
func (s *EtcdStore) WriteSharedFile(ctx context.Context, name string, data []byte) error {
	if _, err := s.client.Put(ctx, s.prefix+name, string(data)); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	return nil
}
