package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// minTextLayerLen is the trimmed text length below which the text layer is
// considered unusable and the OCR fallback is attempted.
const minTextLayerLen = 50

// PdfLoader implements the Loader interface for reading PDF files. The
// embedded text layer is extracted first; when it yields almost nothing the
// pages are rasterized and run through the OCR engine, and whichever output
// is longer wins. OCR failures are logged and swallowed so a scanned page
// never takes down an upload that still has a text layer.
type PdfLoader struct {
	ocr interfaces.OCREngine // optional; nil disables the fallback
	log *logger.Logger
}

// NewPdfLoader creates a new PdfLoader. ocr may be nil.
func NewPdfLoader(ocr interfaces.OCREngine, log *logger.Logger) *PdfLoader {
	return &PdfLoader{ocr: ocr, log: log}
}

// Load reads a PDF file and returns a single Document holding the full
// extracted text.
func (l *PdfLoader) Load(ctx context.Context, path string) (*schema.Document, error) {
	text, pages, err := l.extractTextLayer(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	l.log.Info(fmt.Sprintf("Text layer extracted %d characters from %s", len([]rune(strings.TrimSpace(text))), filepath.Base(path)))

	if needsOCR(text) && l.ocr != nil {
		l.log.Info("Text layer yielded minimal text, attempting OCR fallback...")
		ocrText, ocrErr := l.extractOCR(ctx, path)
		if ocrErr != nil {
			l.log.Warn(fmt.Sprintf("OCR fallback failed: %v. Keeping text layer output.", ocrErr))
		} else {
			text = chooseText(text, ocrText)
		}
	}

	return &schema.Document{
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName:  filepath.Base(path),
			schema.MetadataKeyPageCount: pages,
		},
	}, nil
}

// extractTextLayer reads the embedded text layer page by page.
func (l *PdfLoader) extractTextLayer(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not lose the rest of the file.
			l.log.Warn(fmt.Sprintf("Failed to read text layer of page %d: %v", i, err))
			continue
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	return sb.String(), numPages, nil
}

// extractOCR rasterizes each page and runs it through the OCR engine.
func (l *PdfLoader) extractOCR(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		img, err := doc.Image(i)
		if err != nil {
			l.log.Warn(fmt.Sprintf("Failed to render page %d for OCR: %v", i+1, err))
			continue
		}

		pageText, err := l.ocr.Recognize(ctx, img)
		if err != nil {
			l.log.Warn(fmt.Sprintf("OCR failed on page %d: %v", i+1, err))
			continue
		}

		l.log.Debug(fmt.Sprintf("OCR extracted %d characters from page %d", len(pageText), i+1))
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// needsOCR reports whether the text layer output is too small to be trusted.
func needsOCR(text string) bool {
	return len([]rune(strings.TrimSpace(text))) < minTextLayerLen
}

// chooseText keeps whichever extraction produced more trimmed text.
func chooseText(primary, ocr string) string {
	if len(strings.TrimSpace(ocr)) > len(strings.TrimSpace(primary)) {
		return ocr
	}
	return primary
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
