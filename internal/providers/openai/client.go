package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultVisionModel = "gpt-4o"
	defaultImageModel  = goopenai.CreateImageModelDallE3
	defaultImageSize   = goopenai.CreateImageSize1024x1024
	describeMaxTokens  = 1000
	serviceName        = "openai"
)

// Options configures the OpenAI client.
type Options struct {
	APIKey      string
	BaseURL     string
	OrgID       string
	VisionModel string
	ImageModel  string
	ImageSize   string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// Client describes images with a chat vision model and renders images with
// the images API.
type Client struct {
	api         *goopenai.Client
	visionModel string
	imageModel  string
	imageSize   string
}

func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.OrgID = strings.TrimSpace(opts.OrgID)
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	cfg.HTTPClient = httpClient

	return &Client{
		api:         goopenai.NewClientWithConfig(cfg),
		visionModel: firstNonEmpty(opts.VisionModel, defaultVisionModel),
		imageModel:  firstNonEmpty(opts.ImageModel, defaultImageModel),
		imageSize:   firstNonEmpty(opts.ImageSize, defaultImageSize),
	}, nil
}

// Describe sends the image as a data URL with instruction as the system
// message and returns the model's answer.
func (c *Client) Describe(ctx context.Context, source imagegen.SourceImage, instruction string) (string, error) {
	mimeType := source.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(source.Data)
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     c.visionModel,
		MaxTokens: describeMaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: instruction},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type:     goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", wrapError("describe", err)
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ExternalServiceError{Service: serviceName, Stage: "describe", Detail: "no choices returned"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &domain.ExternalServiceError{Service: serviceName, Stage: "describe", Detail: "empty description"}
	}
	return content, nil
}

// Generate renders one image for prompt and returns its temporary URL.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           c.imageSize,
		Quality:        goopenai.CreateImageQualityStandard,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", wrapError("generate", err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return "", &domain.ExternalServiceError{Service: serviceName, Stage: "generate", Detail: "no image returned"}
	}
	return resp.Data[0].URL, nil
}

func wrapError(stage string, err error) error {
	detail := err.Error()
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		detail = apiErr.Message
		if apiErr.HTTPStatusCode != 0 {
			detail = fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
	case errors.As(err, &reqErr):
		detail = fmt.Sprintf("status %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return &domain.ExternalServiceError{Service: serviceName, Stage: stage, Detail: detail, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

var (
	_ imagegen.Describer = (*Client)(nil)
	_ imagegen.Generator = (*Client)(nil)
)
