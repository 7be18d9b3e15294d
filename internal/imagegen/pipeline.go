package imagegen

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/storage"
)

// UploadsPath is the URL prefix under which committed files are served.
const UploadsPath = "/uploads/"

// ProcessorOptions wires a Processor.
type ProcessorOptions struct {
	Describer     Describer
	Generator     Generator
	Fetcher       *Fetcher
	Store         *storage.FileStore
	PublicBaseURL string
	CallTimeout   time.Duration
	Logger        zerolog.Logger
	// NewSuffix overrides the random file-name suffix.
	NewSuffix func() string
}

// Processor runs describe, generate, fetch and persist in order. Calls are independent
// and may run concurrently.
type Processor struct {
	describer   Describer
	generator   Generator
	fetcher     *Fetcher
	store       *storage.FileStore
	baseURL     string
	baseHost    string
	callTimeout time.Duration
	logger      zerolog.Logger
	newSuffix   func() string
}

func NewProcessor(opts ProcessorOptions) (*Processor, error) {
	if opts.Describer == nil {
		return nil, errors.New("imagegen: describer is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("imagegen: generator is required")
	}
	if opts.Store == nil {
		return nil, errors.New("imagegen: file store is required")
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(FetcherOptions{})
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	suffix := opts.NewSuffix
	if suffix == nil {
		suffix = randomSuffix
	}
	base := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")
	var host string
	if u, err := url.Parse(base); err == nil {
		host = strings.ToLower(u.Host)
	}
	return &Processor{
		describer:   opts.Describer,
		generator:   opts.Generator,
		fetcher:     fetcher,
		store:       opts.Store,
		baseURL:     base,
		baseHost:    host,
		callTimeout: timeout,
		logger:      opts.Logger,
		newSuffix:   suffix,
	}, nil
}

// ProcessImage restyles or enhances req.SourceImage. On any error nothing is
// left on disk from this call and the caller must not record history.
func (p *Processor) ProcessImage(ctx context.Context, req Request) (*Result, error) {
	var instruction string
	switch req.Mode {
	case ModeStyle:
		if strings.TrimSpace(req.StyleName) == "" {
			return nil, &domain.ValidationError{Field: "style", Message: "style is required"}
		}
		instruction = StyleInstruction(req.StyleName)
	case ModeEnhance:
		if req.Enhancement == nil {
			return nil, &domain.ValidationError{Field: "settings", Message: "settings are required"}
		}
		instruction = EnhancementInstruction(*req.Enhancement)
	case ModeGenerate:
		return p.GenerateImage(ctx, req.Prompt)
	default:
		return nil, &domain.ValidationError{Field: "mode", Message: "unsupported mode " + string(req.Mode)}
	}
	if strings.TrimSpace(req.SourceImage) == "" {
		return nil, &domain.ValidationError{Field: "imageUrl", Message: "image url is required"}
	}

	log := p.logger.With().Str("mode", string(req.Mode)).Logger()
	suffix := p.newSuffix()
	var staged []*storage.StagedFile
	defer func() { p.discard(staged) }()

	source, copied, err := p.resolveSource(ctx, req.SourceImage, suffix)
	if err != nil {
		return nil, err
	}
	if copied != nil {
		staged = append(staged, copied)
	}
	log.Debug().Str("source", req.SourceImage).Int("bytes", len(source.Data)).Msg("source resolved")

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	description, err := p.describer.Describe(callCtx, source, instruction)
	cancel()
	if err != nil {
		return nil, asExternal(err, "vision", "describe")
	}
	log.Debug().Int("description_len", len(description)).Msg("image described")

	res, more, err := p.render(ctx, DescriptionGenerationPrompt(description), "processed", suffix)
	staged = append(staged, more...)
	if err != nil {
		return nil, err
	}
	if err := p.commit(staged); err != nil {
		return nil, err
	}
	log.Info().Str("processed_url", res.ProcessedURL).Msg("image processed")
	return res, nil
}

// GenerateImage renders a new image from a text prompt.
func (p *Processor) GenerateImage(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &domain.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	var staged []*storage.StagedFile
	defer func() { p.discard(staged) }()

	res, more, err := p.render(ctx, TextGenerationPrompt(prompt), "generated", p.newSuffix())
	staged = append(staged, more...)
	if err != nil {
		return nil, err
	}
	if err := p.commit(staged); err != nil {
		return nil, err
	}
	p.logger.Info().Str("processed_url", res.ProcessedURL).Msg("image generated")
	return res, nil
}

// render generates one image for prompt, downloads it and stages it together
// with its thumbnail copy.
func (p *Processor) render(ctx context.Context, prompt, kind, suffix string) (*Result, []*storage.StagedFile, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	imageURL, err := p.generator.Generate(callCtx, prompt)
	cancel()
	if err != nil {
		return nil, nil, asExternal(err, "image", "generate")
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, nil, &domain.ExternalServiceError{Service: "image", Stage: "generate", Detail: "no image returned"}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	data, _, err := p.fetcher.Fetch(fetchCtx, imageURL)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	var staged []*storage.StagedFile
	processed, err := p.store.Stage(ctx, kind+"-"+suffix+".png", data)
	if err != nil {
		return nil, staged, &domain.StorageError{Op: "stage", Err: err}
	}
	staged = append(staged, processed)
	thumb, err := p.store.Stage(ctx, "thumbnail-"+suffix+".png", data)
	if err != nil {
		return nil, staged, &domain.StorageError{Op: "stage", Err: err}
	}
	staged = append(staged, thumb)
	return &Result{
		ProcessedURL: p.PublicURL(processed.Key),
		ThumbnailURL: p.PublicURL(thumb.Key),
	}, staged, nil
}

// resolveSource loads the input image. Files already served by this instance
// are read from disk; anything else is downloaded and a copy is staged.
func (p *Processor) resolveSource(ctx context.Context, source, suffix string) (SourceImage, *storage.StagedFile, error) {
	source = strings.TrimSpace(source)
	if key, ok := p.LocalKey(source); ok {
		data, err := p.store.Read(ctx, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return SourceImage{}, nil, &domain.FetchError{URL: source, StatusCode: http.StatusNotFound, Err: err}
			}
			return SourceImage{}, nil, &domain.StorageError{Op: "read", Err: err}
		}
		return SourceImage{Data: data, MIMEType: sniffImageType(data, ""), Name: key}, nil, nil
	}
	lower := strings.ToLower(source)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return SourceImage{}, nil, &domain.ValidationError{Field: "imageUrl", Message: "image url must be http(s) or an uploaded file"}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	data, contentType, err := p.fetcher.Fetch(fetchCtx, source)
	cancel()
	if err != nil {
		return SourceImage{}, nil, err
	}
	mimeType := sniffImageType(data, contentType)
	staged, err := p.store.Stage(ctx, "original-"+suffix+extensionFor(mimeType), data)
	if err != nil {
		return SourceImage{}, nil, &domain.StorageError{Op: "stage", Err: err}
	}
	return SourceImage{Data: data, MIMEType: mimeType, Name: staged.Key}, staged, nil
}

// LocalKey maps a URL or path pointing at this instance's uploads to a store
// key. Bare file names are treated as upload keys.
func (p *Processor) LocalKey(source string) (string, bool) {
	return uploadKey(p.baseHost, source)
}

// UploadKey is LocalKey for callers that only know the public base URL.
func UploadKey(publicBaseURL, source string) (string, bool) {
	var host string
	if u, err := url.Parse(strings.TrimSpace(publicBaseURL)); err == nil {
		host = strings.ToLower(u.Host)
	}
	return uploadKey(host, source)
}

func uploadKey(baseHost, source string) (string, bool) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", false
	}
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(source)
		if err != nil || baseHost == "" || strings.ToLower(u.Host) != baseHost {
			return "", false
		}
		source = u.Path
	}
	if strings.HasPrefix(source, UploadsPath) {
		source = strings.TrimPrefix(source, UploadsPath)
	} else if strings.Contains(source, "/") || strings.Contains(source, ":") {
		return "", false
	}
	key := path.Clean("/" + source)[1:]
	if key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

// PublicURL is the address a committed key is served from.
func (p *Processor) PublicURL(key string) string {
	return p.baseURL + UploadsPath + key
}

// commit publishes staged files in order. If one fails, the ones already
// published are removed again so a failed call leaves nothing behind.
func (p *Processor) commit(staged []*storage.StagedFile) error {
	for i, f := range staged {
		if err := f.Commit(); err != nil {
			for _, done := range staged[:i] {
				if rerr := done.Revert(); rerr != nil {
					p.logger.Warn().Err(rerr).Str("key", done.Key).Msg("revert committed file failed")
				}
			}
			return &domain.StorageError{Op: "commit", Err: err}
		}
	}
	return nil
}

func (p *Processor) discard(staged []*storage.StagedFile) {
	for _, f := range staged {
		if err := f.Discard(); err != nil {
			p.logger.Warn().Err(err).Str("key", f.Key).Msg("discard staged file failed")
		}
	}
}

func asExternal(err error, service, stage string) error {
	var ext *domain.ExternalServiceError
	if errors.As(err, &ext) {
		return err
	}
	return &domain.ExternalServiceError{Service: service, Stage: stage, Detail: err.Error(), Err: err}
}

func sniffImageType(data []byte, declared string) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	if detected := http.DetectContentType(data); strings.HasPrefix(detected, "image/") {
		return detected
	}
	return "image/jpeg"
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
