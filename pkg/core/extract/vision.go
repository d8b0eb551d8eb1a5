package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"statement_analyzer/pkg/core/utils"
	"statement_analyzer/pkg/models"
)

// Image is one uploaded statement page.
type Image struct {
	Data     []byte
	MIMEType string // e.g. "image/png"
}

// VisionExtractor reads statement images with a Gemini vision model.
type VisionExtractor struct {
	modelName string
}

// NewVisionExtractor creates an extractor. An empty model name picks
// the default vision model.
func NewVisionExtractor(modelName string) *VisionExtractor {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &VisionExtractor{modelName: modelName}
}

// Extract reads one image into a normalized document. Transport and
// decode failures return TransportError so the API layer can surface
// a retryable message.
func (e *VisionExtractor) Extract(ctx context.Context, img Image) (*models.MultiYearDocument, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, &models.TransportError{Op: "extract", Err: fmt.Errorf("GEMINI_API_KEY environment variable not set")}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &models.TransportError{Op: "extract", Err: fmt.Errorf("failed to create Gemini client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(e.modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(extractionSystemPrompt)},
	}

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(img.MIMEType), img.Data),
		genai.Text(extractionUserPrompt),
	)
	if err != nil {
		return nil, &models.TransportError{Op: "extract", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &models.TransportError{Op: "extract", Err: fmt.Errorf("empty response from vision model")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return ParseResponse(sb.String())
}

// ParseResponse decodes model output into a normalized document. The
// decode is lenient: strict JSON first, then repair, then Hjson.
func ParseResponse(text string) (*models.MultiYearDocument, error) {
	var raw rawExtraction
	if _, err := utils.SmartParse(text, &raw); err != nil {
		log.Printf("[Extract] unparseable extraction response: %v", err)
		return nil, &models.TransportError{Op: "parse", Err: err}
	}
	return normalizeResponse(&raw)
}

// FromText extracts a document from pasted statement text using the
// configured text provider.
func FromText(ctx context.Context, registry Texter, text string) (*models.MultiYearDocument, error) {
	prompt := extractionUserPrompt + "\n\nStatement text:\n" + text
	out, err := registry.Execute(ctx, "extraction", prompt, extractionSystemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return nil, &models.TransportError{Op: "extract", Err: err}
	}
	return ParseResponse(out)
}

// Texter is the slice of llm.Registry the text path needs.
type Texter interface {
	Execute(ctx context.Context, task, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

// imageFormat maps a MIME type to the format token the SDK expects.
func imageFormat(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
