package api

import (
	"context"
	"fmt"

	"magf/internal/catalog"
	"magf/internal/magf"
	"magf/internal/media"
)

// CatalogStore abstracts the catalog operations the API needs.
type CatalogStore interface {
	Create(ctx context.Context, req catalog.CreateRequest) (*catalog.Entry, error)
	Get(ctx context.Context, id int64) (*catalog.Entry, error)
	List(ctx context.Context) ([]*catalog.Entry, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, id int64) ([]byte, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// CatalogService exposes catalog operations returning API DTOs.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService constructs a CatalogService around the provided store.
func NewCatalogService(store CatalogStore) *CatalogService {
	if store == nil {
		return nil
	}
	return &CatalogService{store: store}
}

// List returns every catalogued container.
func (s *CatalogService) List(ctx context.Context) ([]ContainerSummary, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return FromEntries(entries), nil
}

// Get fetches a single container summary.
func (s *CatalogService) Get(ctx context.Context, id int64) (*ContainerSummary, error) {
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromEntry(entry)
	return &dto, nil
}

// Create probes the request's frames and stores them.
func (s *CatalogService) Create(ctx context.Context, req CreateContainerRequest) (*ContainerSummary, error) {
	createReq, err := BuildCreateRequest(req)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.Create(ctx, createReq)
	if err != nil {
		return nil, err
	}
	dto := FromEntry(entry)
	return &dto, nil
}

// Delete removes a container.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Export encodes a stored container and returns it with its summary.
func (s *CatalogService) Export(ctx context.Context, id int64) ([]byte, *ContainerSummary, error) {
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	buf, err := s.store.Export(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	dto := FromEntry(entry)
	return buf, &dto, nil
}

// Stats returns catalog totals.
func (s *CatalogService) Stats(ctx context.Context) (CatalogStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return CatalogStats{}, err
	}
	return FromCatalogStats(stats), nil
}

// BuildCreateRequest reads frame dimensions from the image headers.
func BuildCreateRequest(req CreateContainerRequest) (catalog.CreateRequest, error) {
	if len(req.Frames) == 0 {
		return catalog.CreateRequest{}, fmt.Errorf("%w: at least one frame is required", magf.ErrInvalidInput)
	}
	frames, err := media.ProbeFrames(req.Frames)
	if err != nil {
		return catalog.CreateRequest{}, err
	}
	return catalog.CreateRequest{
		Name:      req.Name,
		Frames:    frames,
		Audio:     req.Audio,
		Subtitles: req.Subtitles,
		FPS:       req.FPS,
		Duration:  req.Duration,
		Metadata:  req.Metadata,
	}, nil
}
