package sources

import (
	"context"
	"net/url"

	"github.com/agentstation/catalogmirror/internal/transport"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

var _ Source = (*HTTPSource)(nil)

// HTTPSource fetches live from the catalog API.
type HTTPSource struct {
	client          *transport.Client
	categoryURL     string
	manufacturerURL string
	snapshots       *SnapshotStore
}

// NewHTTP builds a live source. Endpoint paths are resolved against the API URL.
func NewHTTP(cfg Config) (*HTTPSource, error) {
	categoryURL, err := transport.JoinURL(cfg.APIURL, transport.EnsureTrailingSlash(cfg.CategoryEndpoint))
	if err != nil {
		return nil, err
	}
	manufacturerURL, err := transport.JoinURL(cfg.APIURL, transport.EnsureTrailingSlash(cfg.ManufacturerEndpoint))
	if err != nil {
		return nil, err
	}

	var opts []transport.Option
	if cfg.UserAgent != "" {
		opts = append(opts, transport.WithHeader("User-Agent", cfg.UserAgent))
	}

	s := &HTTPSource{
		client:          transport.New(cfg.Timeout, opts...),
		categoryURL:     categoryURL,
		manufacturerURL: manufacturerURL,
	}
	if cfg.StoreSnapshots {
		s.snapshots = NewSnapshotStore(cfg.SnapshotDir)
	}
	return s, nil
}

// ID returns LiveID.
func (s *HTTPSource) ID() ID {
	return LiveID
}

// Category fetches one category listing.
func (s *HTTPSource) Category(ctx context.Context, name string) (map[string]catalog.Item, error) {
	raw, endpoint, err := s.fetch(ctx, errors.FetchCategory, s.categoryURL, name)
	if err != nil {
		return nil, err
	}
	items, err := DecodeCategory(raw)
	if err != nil {
		return nil, errors.NewFetchError(errors.FetchCategory, name, endpoint, err)
	}
	s.persist(ctx, errors.FetchCategory, name, raw)
	return items, nil
}

// Manufacturer fetches one manufacturer's availability feed.
func (s *HTTPSource) Manufacturer(ctx context.Context, name string) (map[string]catalog.Availability, error) {
	raw, endpoint, err := s.fetch(ctx, errors.FetchManufacturer, s.manufacturerURL, name)
	if err != nil {
		return nil, err
	}
	status, err := DecodeManufacturer(raw)
	if err != nil {
		return nil, errors.NewFetchError(errors.FetchManufacturer, name, endpoint, err)
	}
	s.persist(ctx, errors.FetchManufacturer, name, raw)
	return status, nil
}

func (s *HTTPSource) fetch(ctx context.Context, kind errors.FetchKind, base, name string) ([]byte, string, error) {
	endpoint, err := transport.JoinURL(base, url.PathEscape(name))
	if err != nil {
		return nil, "", errors.NewFetchError(kind, name, base, err)
	}

	resp, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, endpoint, errors.NewFetchError(kind, name, endpoint, err)
	}
	body, err := transport.ReadBody(resp)
	if err != nil {
		fe := errors.NewFetchError(kind, name, endpoint, err)
		fe.StatusCode = resp.StatusCode
		return nil, endpoint, fe
	}
	return body, endpoint, nil
}

// persist writes the snapshot; failures are logged and never fail the fetch.
func (s *HTTPSource) persist(ctx context.Context, kind errors.FetchKind, name string, raw []byte) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Write(kind, name, raw); err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("kind", string(kind)).
			Str("name", name).
			Msg("Failed to store snapshot")
	}
}
