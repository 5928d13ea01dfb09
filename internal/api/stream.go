package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/platgeo/geovt/internal/sse"
)

// StreamHandler streams index-build progress over SSE, the Datastar-facing
// counterpart to APIHandler.BuildFromSource. Large sources can take long
// enough building the zoom pyramid that a client benefits from knowing it
// is still running rather than waiting on a bare synchronous POST.
type StreamHandler struct {
	sse.Handler
	svc *Services
}

// NewStreamHandler creates a StreamHandler over svc.
func NewStreamHandler(svc *Services) *StreamHandler {
	return &StreamHandler{svc: svc}
}

// RegisterRoutes registers every route this handler serves.
func (h *StreamHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "build-source-stream",
		Method:      "POST",
		Path:        "/api/v1/sources/{name}/build/stream",
		Tags:        []string{"sources"},
	}, h.BuildStream)
}

// BuildStream loads the named source and builds the live index, reporting
// progress signals as it goes: the SSE equivalent of APIHandler.BuildFromSource.
func (h *StreamHandler) BuildStream(ctx context.Context, input *SourceNameInput) (*huma.StreamResponse, error) {
	return h.Stream(func(s sse.SSE) {
		if h.svc == nil || h.svc.Source == nil || h.svc.Index == nil {
			s.Error("service not available")
			return
		}

		s.Signals(map[string]any{"status": "loading " + input.Name, "progress": 10})

		fc, err := h.svc.Source.Load(input.Name)
		if err != nil {
			s.Error(err.Error())
			return
		}

		s.Signals(map[string]any{"status": "building index", "progress": 50, "features": len(fc.Features)})

		h.svc.Index.Build(input.Name, fc)

		byZoom, total := h.svc.Index.Stats()
		s.Signals(map[string]any{
			"status":   "done",
			"progress": 100,
			"tiles":    total,
			"byZoom":   byZoom,
		})
		s.Success("index built from " + input.Name)
	}), nil
}
