package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-pdf/fpdf"

	"formkeeper/pkg/domain"
)

const (
	pageMargin = 10.0

	titleY = 20.0
	textY  = 40.0
	imageY = 50.0
)

// Exporter renders a record to a single-page A4 PDF: a title line, the
// record text, and the attached image scaled to fit the remaining page.
type Exporter struct {
	fetcher *ImageFetcher

	// compress toggles stream compression; disabled only in tests so
	// the output stays inspectable.
	compress bool
}

// NewExporter builds a PDF exporter that resolves images through fetcher.
// A nil fetcher produces text-only documents.
func NewExporter(fetcher *ImageFetcher) *Exporter {
	return &Exporter{fetcher: fetcher, compress: true}
}

// Export renders the record. When the image cannot be fetched or decoded
// the document is still produced without it; PDF generation only fails
// on rendering errors.
func (e *Exporter) Export(ctx context.Context, rec domain.Record) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(e.compress)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.AddPage()
	pageW, pageH := doc.GetPageSize()

	doc.SetFont("Helvetica", "B", 16)
	doc.Text(pageMargin, titleY, "Registro")

	doc.SetFont("Helvetica", "", 12)
	doc.Text(pageMargin, textY, "Texto: "+rec.Text)

	if rec.HasImage() && e.fetcher != nil {
		img, err := e.fetcher.Fetch(ctx, rec.ImageURL)
		if err != nil {
			slog.Warn("export image unavailable, producing text-only document",
				"record_id", rec.ID, "err", err)
		} else {
			maxW := pageW - 2*pageMargin
			maxH := pageH - 100
			w, h := FitRect(float64(img.Width), float64(img.Height), maxW, maxH)
			name := "record-image-" + rec.ID
			doc.RegisterImageOptionsReader(name,
				fpdf.ImageOptions{ImageType: img.Kind}, bytes.NewReader(img.Data))
			doc.ImageOptions(name, pageMargin, imageY, w, h, false,
				fpdf.ImageOptions{ImageType: img.Kind}, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FitRect scales a w×h box to fit inside maxW×maxH preserving aspect
// ratio.
func FitRect(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	ratio := maxW / w
	if r := maxH / h; r < ratio {
		ratio = r
	}
	return w * ratio, h * ratio
}
