package server

import (
	"context"
	"fmt"

	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/viewer"
)

// localService adapts a pagedata.Provider to the viewer's PageService.
// Viewer sessions run in the same process as the data, so page fetches
// never leave the process; only the rendered image goes over HTTP.
type localService struct {
	provider *pagedata.Provider
}

// NewLocalService wraps a provider for in-process viewer sessions.
func NewLocalService(p *pagedata.Provider) viewer.PageService {
	return &localService{provider: p}
}

func (s *localService) Info(ctx context.Context) (*viewer.InfoResult, error) {
	return &viewer.InfoResult{TotalPages: s.provider.TotalPages()}, nil
}

func (s *localService) Page(ctx context.Context, index, zoom int) (*viewer.PageResult, error) {
	resp, err := s.provider.Page(index, zoom)
	if err != nil {
		// Provider errors are displayed verbatim in the panes, exactly as
		// the JSON API reports them in its error field.
		return &viewer.PageResult{Err: err.Error()}, nil
	}

	return &viewer.PageResult{
		Filename:   resp.Filename,
		TotalPages: resp.TotalPages,
		Geometry: viewer.Geometry{
			DisplayWidth:   resp.DisplayWidth,
			DisplayHeight:  resp.DisplayHeight,
			ComposedBlocks: toViewerRegions(resp.ComposedBlocks),
			Illustrations:  toViewerRegions(resp.Illustrations),
			Lines:          toViewerRegions(resp.Lines),
			Strings:        toViewerRegions(resp.Boxes),
		},
	}, nil
}

func (s *localService) ImageURL(index, zoom int) string {
	return fmt.Sprintf("/api/image/%d?zoom=%d", index, zoom)
}

func toViewerRegions(regions []pagedata.Region) []viewer.Region {
	out := make([]viewer.Region, len(regions))
	for i, r := range regions {
		out[i] = viewer.Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Content: r.Content}
	}
	return out
}
