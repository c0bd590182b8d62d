package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine defines the interface for text recognition over bill images.
type Engine interface {
	// Recognize extracts text from PNG image bytes.
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Tesseract implements the Engine interface using the Tesseract OCR engine.
type Tesseract struct {
	languages []string
}

// NewTesseract creates a Tesseract engine. With no languages given it
// recognizes Vietnamese and English combined, matching the two locales the
// service supports.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"vie", "eng"}
	}
	return &Tesseract{languages: languages}
}

// Recognize extracts text from PNG image bytes. A fresh client is created
// per call; gosseract clients are not safe for concurrent use.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting ocr languages: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}

	return text, nil
}
