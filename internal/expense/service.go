package expense

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spendeka/spendeka-api/internal/ocr"
	"github.com/spendeka/spendeka-api/internal/scanning"
)

// TimeSource provides the reference datetime for a request
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the extraction flows. It holds no per-request state; each
// request's asset and reference time are its own.
type Service struct {
	generator  scanning.Generator
	engine     ocr.Engine
	timeSource TimeSource
}

// NewService creates a new Service with the real time source.
func NewService(generator scanning.Generator, engine ocr.Engine) *Service {
	return &Service{
		generator:  generator,
		engine:     engine,
		timeSource: &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with a custom time source for testing.
func NewServiceWithDeps(generator scanning.Generator, engine ocr.Engine, timeSource TimeSource) *Service {
	return &Service{
		generator:  generator,
		engine:     engine,
		timeSource: timeSource,
	}
}

// ParseText converts free text into a Transaction. Blank input is rejected
// before any external call is made.
func (s *Service) ParseText(ctx context.Context, text string, lang scanning.Language) (*Transaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidInput("Missing or invalid 'text'")
	}

	// The reference datetime is captured exactly once so that "today" and
	// "yesterday" resolve the same way throughout the request.
	ref := s.timeSource.Now().UTC()

	data, err := s.generator.ParseTransaction(ctx, text, lang, ref)
	if err != nil {
		slog.Error("Failed to parse transaction from text",
			"language", lang,
			"error", err,
		)
		return nil, upstream("Failed to parse transaction from text", err)
	}

	return &Transaction{
		Caption:   data.Caption,
		Amount:    data.Amount,
		Category:  data.Category,
		Type:      data.Type,
		CreatedAt: data.CreatedAt,
	}, nil
}

// ScanBill runs the bill flow: size check, OCR, then the same text path as
// ParseText. The asset is deleted on every exit path, success or failure.
func (s *Service) ScanBill(ctx context.Context, asset *Asset, lang scanning.Language) (*BillScan, error) {
	defer asset.Discard()

	if asset.Size <= 0 {
		return nil, invalidInput("Uploaded bill image is empty")
	}
	if asset.Size > MaxBillImageSize {
		return nil, payloadTooLarge("Bill image too large. Please upload an image under 5MB.")
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return nil, internal("Failed to read uploaded bill image", err)
	}

	prepared, err := scanning.PrepareImage(data, asset.MimeType)
	if err != nil {
		return nil, invalidInput("Unsupported or unreadable bill image")
	}

	rawText, err := s.engine.Recognize(ctx, prepared)
	if err != nil {
		slog.Error("OCR failed on bill image",
			"mime_type", asset.MimeType,
			"size", asset.Size,
			"error", err,
		)
		return nil, upstream("Failed to read the bill image", err)
	}

	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, emptyOCR("OCR did not detect any text in the bill image.")
	}

	parsed, err := s.ParseText(ctx, rawText, lang)
	if err != nil {
		return nil, err
	}

	return &BillScan{RawText: rawText, Parsed: parsed}, nil
}

// CaptionImage runs the item-photo flow. The asset is deleted on every exit
// path, success or failure.
func (s *Service) CaptionImage(ctx context.Context, asset *Asset, lang scanning.Language) (*CaptionResult, error) {
	defer asset.Discard()

	if asset.Size <= 0 {
		return nil, invalidInput("Uploaded image is empty")
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return nil, internal("Failed to read uploaded image", err)
	}

	result, err := s.generator.CaptionImage(ctx, data, asset.MimeType, lang)
	if err != nil {
		slog.Error("Failed to generate image caption",
			"mime_type", asset.MimeType,
			"language", lang,
			"error", err,
		)
		return nil, upstream("Failed to generate image caption", err)
	}

	return &CaptionResult{Items: result.Items, Caption: result.Caption}, nil
}
