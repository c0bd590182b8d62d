package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Generator interface using Google Gemini.
type Gemini struct {
	client      *genai.Client
	textModel   *genai.GenerativeModel
	visionModel *genai.GenerativeModel
}

// NewGemini creates a new Gemini Generator instance.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	// Transaction parsing wants deterministic output; captions may vary a
	// little. Both tasks request a JSON response body.
	textModel := client.GenerativeModel(modelName)
	textModel.ResponseMIMEType = "application/json"
	textModel.SetTemperature(0)

	visionModel := client.GenerativeModel(modelName)
	visionModel.ResponseMIMEType = "application/json"
	visionModel.SetTemperature(0.2)

	return &Gemini{
		client:      client,
		textModel:   textModel,
		visionModel: visionModel,
	}, nil
}

// ParseTransaction converts free text into a transaction payload.
func (g *Gemini) ParseTransaction(ctx context.Context, text string, lang Language, ref time.Time) (*TransactionData, error) {
	prompt := transactionPrompt(text, lang, ref)

	resp, err := g.textModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	raw, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	data, err := parseTransactionJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction data: %w", err)
	}

	return data, nil
}

// CaptionImage identifies items in a photo and produces a short caption.
func (g *Gemini) CaptionImage(ctx context.Context, image []byte, contentType string, lang Language) (*CaptionData, error) {
	// Everything is PNG after PrepareImage, so the format suffix is fixed.
	finalImage, err := PrepareImage(image, contentType)
	if err != nil {
		return nil, err
	}

	parts := []genai.Part{
		genai.ImageData("png", finalImage),
		genai.Text(captionPrompt(lang)),
	}

	resp, err := g.visionModel.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	raw, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	data, err := parseCaptionJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing caption data: %w", err)
	}

	return data, nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String(), nil
}
