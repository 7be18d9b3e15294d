package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
)

const (
	defaultModel         = "gemini-2.5-flash"
	serviceName          = "gemini"
	maxDescriptionTokens = 1000
)

// Options configures NewDescriber.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Describer implements imagegen.Describer on the Gemini API.
type Describer struct {
	client *genai.Client
	model  string
}

func NewDescriber(ctx context.Context, opts Options) (*Describer, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Describer{client: client, model: model}, nil
}

func (d *Describer) Describe(ctx context.Context, source imagegen.SourceImage, instruction string) (string, error) {
	mimeType := source.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: source.Data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}
	// thinking tokens count against MaxOutputTokens; flash models can turn
	// thinking off, the others only get an uncapped answer
	if strings.Contains(d.model, "flash") {
		budget := int32(0)
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
		cfg.MaxOutputTokens = maxDescriptionTokens
	}
	res, err := d.client.Models.GenerateContent(ctx, d.model, contents, cfg)
	if err != nil {
		detail := err.Error()
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.Message
		}
		return "", &domain.ExternalServiceError{Service: serviceName, Stage: "describe", Detail: detail, Err: err}
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", &domain.ExternalServiceError{Service: serviceName, Stage: "describe", Detail: "empty description"}
	}
	return text, nil
}

var _ imagegen.Describer = (*Describer)(nil)
