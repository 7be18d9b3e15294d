package imagegen

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/storage"
)

var (
	jpegBytes = []byte("\xff\xd8\xff\xe0fake-jpeg")
	pngBytes  = []byte("\x89PNG\r\n\x1a\nfake-png")
)

type stubDescriber struct {
	description string
	err         error
	block       bool
	calls       int
	source      SourceImage
	instruction string
}

func (s *stubDescriber) Describe(ctx context.Context, source SourceImage, instruction string) (string, error) {
	s.calls++
	s.source = source
	s.instruction = instruction
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.description, s.err
}

type stubGenerator struct {
	url    string
	err    error
	calls  int
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.url, s.err
}

type fixture struct {
	server    *httptest.Server
	hits      atomic.Int32
	base      string
	store     *storage.FileStore
	describer *stubDescriber
	generator *stubGenerator
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	mux := http.NewServeMux()
	mux.HandleFunc("/src.jpg", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegBytes)
	})
	mux.HandleFunc("/gen.png", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.base = t.TempDir()
	store, err := storage.NewFileStore(f.base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	f.store = store
	f.describer = &stubDescriber{description: "a fox in a meadow"}
	f.generator = &stubGenerator{url: f.server.URL + "/gen.png"}
	processor, err := NewProcessor(ProcessorOptions{
		Describer:     f.describer,
		Generator:     f.generator,
		Fetcher:       NewFetcher(FetcherOptions{HTTPClient: f.server.Client()}),
		Store:         store,
		PublicBaseURL: "http://silkify.test/",
		CallTimeout:   time.Second,
		Logger:        zerolog.Nop(),
		NewSuffix:     func() string { return "abc" },
	})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	f.processor = processor
	return f
}

// committedFiles lists files outside the staging area.
func (f *fixture) committedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.base)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	staging, err := os.ReadDir(filepath.Join(f.base, ".staging"))
	if err != nil {
		t.Fatalf("ReadDir staging: %v", err)
	}
	if len(staging) != 0 {
		t.Fatalf("staging area has %d leftover files", len(staging))
	}
	return names
}

func TestProcessImageStyleRemoteSource(t *testing.T) {
	f := newFixture(t)
	res, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleGhibli,
	})
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if res.ProcessedURL != "http://silkify.test/uploads/processed-abc.png" {
		t.Fatalf("ProcessedURL = %q", res.ProcessedURL)
	}
	if res.ThumbnailURL != "http://silkify.test/uploads/thumbnail-abc.png" {
		t.Fatalf("ThumbnailURL = %q", res.ThumbnailURL)
	}
	if f.describer.instruction != StyleInstruction(StyleGhibli) {
		t.Fatalf("describer instruction = %q", f.describer.instruction)
	}
	if f.describer.source.MIMEType != "image/jpeg" {
		t.Fatalf("describer MIME = %q, want image/jpeg", f.describer.source.MIMEType)
	}
	if want := DescriptionGenerationPrompt("a fox in a meadow"); f.generator.prompt != want {
		t.Fatalf("generator prompt = %q, want %q", f.generator.prompt, want)
	}
	processed, err := f.store.Read(context.Background(), "processed-abc.png")
	if err != nil {
		t.Fatalf("read processed: %v", err)
	}
	thumb, err := f.store.Read(context.Background(), "thumbnail-abc.png")
	if err != nil {
		t.Fatalf("read thumbnail: %v", err)
	}
	if !bytes.Equal(processed, pngBytes) || !bytes.Equal(thumb, processed) {
		t.Fatalf("processed and thumbnail should hold the generated bytes")
	}
	if !f.store.Exists("original-abc.jpg") {
		t.Fatalf("original copy missing")
	}
	if got := len(f.committedFiles(t)); got != 3 {
		t.Fatalf("committed %d files, want 3", got)
	}
}

func TestProcessImageEnhanceUsesEnhancementInstruction(t *testing.T) {
	f := newFixture(t)
	settings := &EnhancementSettings{Brightness: 20, Upscale: true}
	if _, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeEnhance,
		Enhancement: settings,
	}); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if f.describer.instruction != EnhancementInstruction(*settings) {
		t.Fatalf("describer instruction = %q", f.describer.instruction)
	}
}

func TestProcessImageSourceFetchFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/broken",
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	})
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %#v, want FetchError with status 500", err)
	}
	if f.describer.calls != 0 || f.generator.calls != 0 {
		t.Fatalf("external calls made after fetch failure: describe=%d generate=%d", f.describer.calls, f.generator.calls)
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}

func TestProcessImageDescribeFailureDiscardsSourceCopy(t *testing.T) {
	f := newFixture(t)
	f.describer.err = errors.New("model overloaded")
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleAnime,
	})
	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("err = %v, want ExternalServiceError", err)
	}
	if extErr.Detail != "model overloaded" || extErr.Stage != "describe" {
		t.Fatalf("ExternalServiceError = %+v", extErr)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator called after describe failure")
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}

func TestProcessImageGeneratedFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.url = f.server.URL + "/broken"
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleSciFi,
	})
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}

func TestProcessImageLocalSourceSkipsFetch(t *testing.T) {
	f := newFixture(t)
	if _, err := f.store.Write(context.Background(), "upload.png", pngBytes); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: "http://silkify.test/uploads/upload.png",
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	}); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if got := f.hits.Load(); got != 1 {
		t.Fatalf("http hits = %d, want 1 (generated image only)", got)
	}
	if f.describer.source.MIMEType != "image/png" {
		t.Fatalf("describer MIME = %q, want image/png", f.describer.source.MIMEType)
	}
	if f.store.Exists("original-abc.jpg") || f.store.Exists("original-abc.png") {
		t.Fatalf("local sources should not be copied")
	}
}

func TestProcessImageMissingLocalSource(t *testing.T) {
	f := newFixture(t)
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: "/uploads/nope.png",
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	})
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestProcessImageValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		req  Request
	}{
		{name: "missing_style", req: Request{SourceImage: "x.png", Mode: ModeStyle}},
		{name: "missing_settings", req: Request{SourceImage: "x.png", Mode: ModeEnhance}},
		{name: "missing_source", req: Request{Mode: ModeStyle, StyleName: StyleSketch}},
		{name: "unknown_mode", req: Request{SourceImage: "x.png", Mode: "warp"}},
		{name: "bad_scheme", req: Request{SourceImage: "ftp://host/x.png", Mode: ModeStyle, StyleName: StyleSketch}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.processor.ProcessImage(context.Background(), tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestProcessImageDescribeTimeout(t *testing.T) {
	f := newFixture(t)
	f.describer.block = true
	f.processor.callTimeout = 20 * time.Millisecond
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	})
	if !errors.Is(err, domain.ErrExternalService) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want ExternalServiceError wrapping DeadlineExceeded", err)
	}
}

func TestGenerateImage(t *testing.T) {
	f := newFixture(t)
	res, err := f.processor.GenerateImage(context.Background(), "a lighthouse at dusk")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if res.ProcessedURL != "http://silkify.test/uploads/generated-abc.png" {
		t.Fatalf("ProcessedURL = %q", res.ProcessedURL)
	}
	if f.generator.prompt != "a lighthouse at dusk. Do not add any text or watermarks." {
		t.Fatalf("generator prompt = %q", f.generator.prompt)
	}
	if f.describer.calls != 0 {
		t.Fatalf("describer should not run for text prompts")
	}
	if _, err := f.processor.GenerateImage(context.Background(), "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty prompt err = %v, want ErrValidation", err)
	}
}

func TestGenerateImageEmptyURL(t *testing.T) {
	f := newFixture(t)
	f.generator.url = ""
	if _, err := f.processor.GenerateImage(context.Background(), "cat"); !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
}

func TestLocalKey(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		in   string
		key  string
		want bool
	}{
		{in: "http://silkify.test/uploads/a.png", key: "a.png", want: true},
		{in: "HTTP://SILKIFY.TEST/uploads/a.png", key: "a.png", want: true},
		{in: "/uploads/b.jpg", key: "b.jpg", want: true},
		{in: "c.jpg", key: "c.jpg", want: true},
		{in: "https://elsewhere.test/uploads/a.png", want: false},
		{in: "http://silkify.test/other/a.png", want: false},
		{in: "/uploads/nested/a.png", want: false},
		{in: "", want: false},
	}
	for _, tc := range cases {
		key, ok := f.processor.LocalKey(tc.in)
		if ok != tc.want || key != tc.key {
			t.Fatalf("LocalKey(%q) = (%q, %v), want (%q, %v)", tc.in, key, ok, tc.key, tc.want)
		}
	}
}

func TestUploadKeyMatchesLocalKey(t *testing.T) {
	f := newFixture(t)
	for _, in := range []string{"http://silkify.test/uploads/a.png", "https://elsewhere.test/uploads/a.png", "/uploads/b.jpg", "x/y"} {
		wantKey, wantOK := f.processor.LocalKey(in)
		key, ok := UploadKey("http://silkify.test", in)
		if key != wantKey || ok != wantOK {
			t.Fatalf("UploadKey(%q) = (%q, %v), want (%q, %v)", in, key, ok, wantKey, wantOK)
		}
	}
	if _, ok := UploadKey("", "http://silkify.test/uploads/a.png"); ok {
		t.Fatalf("UploadKey without base URL accepted an absolute URL")
	}
}

func TestProcessImageUnreachableSource(t *testing.T) {
	f := newFixture(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL + "/src.jpg"
	dead.Close()

	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: deadURL,
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	})
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fetchErr.StatusCode != 0 || fetchErr.Err == nil || fetchErr.URL != deadURL {
		t.Fatalf("FetchError = %+v, want transport failure for %s", fetchErr, deadURL)
	}
	if f.describer.calls != 0 || f.generator.calls != 0 {
		t.Fatalf("external calls made after fetch failure: describe=%d generate=%d", f.describer.calls, f.generator.calls)
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}

func TestProcessImageGenerateFailureDiscardsSourceCopy(t *testing.T) {
	f := newFixture(t)
	f.generator.err = errors.New("content policy violation")
	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleAnime,
	})
	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("err = %v, want ExternalServiceError", err)
	}
	if extErr.Stage != "generate" || extErr.Detail != "content policy violation" {
		t.Fatalf("ExternalServiceError = %+v", extErr)
	}
	if f.describer.calls != 1 || f.generator.calls != 1 {
		t.Fatalf("calls describe=%d generate=%d, want 1 each", f.describer.calls, f.generator.calls)
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}

func TestProcessImageCommitFailureRevertsEarlierFiles(t *testing.T) {
	f := newFixture(t)
	// a non-empty directory at the thumbnail key makes its rename fail
	blocker := filepath.Join(f.base, "thumbnail-abc.png")
	if err := os.MkdirAll(blocker, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := f.processor.ProcessImage(context.Background(), Request{
		SourceImage: f.server.URL + "/src.jpg",
		Mode:        ModeStyle,
		StyleName:   StyleSketch,
	})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if files := f.committedFiles(t); len(files) != 0 {
		t.Fatalf("files left behind: %v", files)
	}
}
