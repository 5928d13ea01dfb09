package api

import (
	"context"
	"testing"

	"github.com/platgeo/geovt/internal/vt"
)

func TestGetInfoReportsTilingParameters(t *testing.T) {
	opts := vt.DefaultOptions()
	h := NewInfoHandler(t.TempDir(), false, opts)

	resp, err := h.GetInfo(context.Background(), &struct{}{})
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	body := resp.Body
	if body.Name != "geovt" {
		t.Errorf("got name %q, want geovt", body.Name)
	}
	if body.DuckDB {
		t.Error("DuckDB reported available when the handler was built without it")
	}
	if body.Extent != opts.Extent || body.Buffer != opts.Buffer {
		t.Errorf("got extent=%d buffer=%d, want %d/%d", body.Extent, body.Buffer, opts.Extent, opts.Buffer)
	}
	if body.MaxZoom != opts.MaxZoom || body.IndexMaxZoom != opts.IndexMaxZoom {
		t.Errorf("got max_zoom=%d index_max_zoom=%d, want %d/%d",
			body.MaxZoom, body.IndexMaxZoom, opts.MaxZoom, opts.IndexMaxZoom)
	}
}
