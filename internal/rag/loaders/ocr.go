package loaders

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"docchat/internal/rag/interfaces"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements the OCREngine interface on top of a local
// Tesseract installation. The gosseract client is not safe for concurrent
// use, so calls are serialized.
type TesseractEngine struct {
	mu       sync.Mutex
	language string
}

// NewTesseractEngine creates a new TesseractEngine. language defaults to
// "eng" when empty.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

// Recognize encodes the page image as PNG and hands it to Tesseract.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load page image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return text, nil
}

// compile-time check to ensure TesseractEngine implements the OCREngine interface
var _ interfaces.OCREngine = (*TesseractEngine)(nil)
