package export

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"

	"formkeeper/pkg/domain"
)

func TestFitRect(t *testing.T) {
	cases := []struct {
		name           string
		w, h           float64
		maxW, maxH     float64
		wantW, wantH   float64
	}{
		{"wide image limited by width", 400, 200, 180, 250, 180, 90},
		{"tall image limited by height", 100, 400, 180, 250, 62.5, 250},
		{"exact fit", 180, 250, 180, 250, 180, 250},
		{"small image scales up", 18, 25, 180, 250, 180, 250},
		{"zero dimensions", 0, 100, 180, 250, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitRect(tc.w, tc.h, tc.maxW, tc.maxH)
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("FitRect(%v, %v, %v, %v) = (%v, %v), want (%v, %v)",
					tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

// newPlainExporter disables stream compression so the output text can
// be read back in assertions.
func newPlainExporter(fetcher *ImageFetcher) *Exporter {
	e := NewExporter(fetcher)
	e.compress = false
	return e
}

func extractText(t *testing.T, data []byte) string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			t.Fatalf("extract page %d: %v", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func TestExportTextOnly(t *testing.T) {
	e := newPlainExporter(nil)
	data, err := e.Export(context.Background(), domain.Record{ID: "r1", Text: "hola mundo"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	text := extractText(t, data)
	if !strings.Contains(text, "Registro") {
		t.Fatalf("document should contain the title, got %q", text)
	}
	if !strings.Contains(text, "Texto: hola mundo") {
		t.Fatalf("document should contain the record text, got %q", text)
	}
}

func TestExportEmbedsImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 400, 200))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	e := newPlainExporter(NewImageFetcher(0))
	rec := domain.Record{ID: "r1", Text: "con imagen", ImageURL: srv.URL + "/imagen.png", ImagePath: "images/imagen.png"}
	data, err := e.Export(context.Background(), rec)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(extractText(t, data), "Texto: con imagen") {
		t.Fatal("document should contain the record text")
	}

	textOnly, err := e.Export(context.Background(), domain.Record{ID: "r2", Text: "con imagen"})
	if err != nil {
		t.Fatalf("export text-only: %v", err)
	}
	if len(data) <= len(textOnly) {
		t.Fatalf("document with image (%d bytes) should be larger than text-only (%d bytes)",
			len(data), len(textOnly))
	}
}

func TestExportFallsBackWhenFetchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newPlainExporter(NewImageFetcher(0))
	rec := domain.Record{ID: "r1", Text: "sin imagen", ImageURL: srv.URL + "/gone.png", ImagePath: "images/gone.png"}
	data, err := e.Export(context.Background(), rec)
	if err != nil {
		t.Fatalf("export should fall back to text-only, got %v", err)
	}
	if !strings.Contains(extractText(t, data), "Texto: sin imagen") {
		t.Fatal("fallback document should still contain the record text")
	}
}

func TestExportFallsBackOnFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	e := newPlainExporter(NewImageFetcher(50 * time.Millisecond))
	rec := domain.Record{ID: "r1", Text: "lento", ImageURL: srv.URL + "/slow.png", ImagePath: "images/slow.png"}
	start := time.Now()
	data, err := e.Export(context.Background(), rec)
	if err != nil {
		t.Fatalf("export should fall back to text-only, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("export took %v, timeout did not apply", elapsed)
	}
	if !strings.Contains(extractText(t, data), "Texto: lento") {
		t.Fatal("fallback document should still contain the record text")
	}
}

func TestDecodeImageRejectsUnknownFormat(t *testing.T) {
	if _, err := decodeImage([]byte("definitely not an image")); err == nil {
		t.Fatal("expected decode error for non-image bytes")
	}
}
