package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveListLoadDelete(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir, nil)

	body := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4,37.8]},"properties":{"name":"sf"}}]}`
	if err := svc.Save("us-states.geojson", strings.NewReader(body)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	files, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Name != "us-states.geojson" || files[0].FileType != "GeoJSON" {
		t.Fatalf("got %+v, want one GeoJSON file named us-states.geojson", files)
	}

	fc, err := svc.Load("us-states.geojson")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}

	if err := svc.Delete("us-states.geojson"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(svc.Dir(), "us-states.geojson")); !os.IsNotExist(err) {
		t.Fatalf("file still exists after Delete")
	}
}

func TestValidateFilenameRejectsTraversal(t *testing.T) {
	svc := New(t.TempDir(), nil)
	cases := []string{"../etc/passwd", "a/b.geojson", "a.txt", "a.geojson"}
	want := []bool{true, true, true, false}
	for i, name := range cases {
		err := svc.ValidateFilename(name)
		if (err != nil) != want[i] {
			t.Errorf("ValidateFilename(%q) error = %v, want error = %v", name, err, want[i])
		}
	}
}

func TestLoadParquetWithoutDBFails(t *testing.T) {
	svc := New(t.TempDir(), nil)
	if _, err := svc.Load("x.parquet"); err == nil {
		t.Fatal("Load with nil db did not error")
	}
}

func TestLoadFileArbitraryPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.geojson")
	body := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4,37.8]},"properties":{}}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fc, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(fc.Features))
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFile(path, nil); err == nil {
		t.Fatal("LoadFile on an unsupported extension did not error")
	}
}

func TestListPaged(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir, nil)
	for _, name := range []string{"a.geojson", "b.geojson", "c.geojson"} {
		if err := svc.Save(name, strings.NewReader(`{"type":"FeatureCollection","features":[]}`)); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	page, total, err := svc.ListPaged(1, 1)
	if err != nil {
		t.Fatalf("ListPaged: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Fatalf("got total=%d len(page)=%d, want total=3 len(page)=1", total, len(page))
	}
}
