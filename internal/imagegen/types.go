package imagegen

import "context"

// Mode selects which branch of the pipeline a Request runs.
type Mode string

const (
	ModeStyle    Mode = "style"
	ModeEnhance  Mode = "enhance"
	ModeGenerate Mode = "generate"
)

// EnhancementSettings are the photo adjustments a caller can ask for. Zero
// values mean "leave alone".
type EnhancementSettings struct {
	Brightness  int  `json:"brightness"`
	Contrast    int  `json:"contrast"`
	Sharpness   int  `json:"sharpness"`
	AutoEnhance bool `json:"autoEnhance"`
	Denoise     bool `json:"denoise"`
	Upscale     bool `json:"upscale"`
	BgRemove    bool `json:"bgRemove"`
	FaceRetouch bool `json:"faceRetouch"`
}

// Request is a single processing job. Only the field matching Mode is read.
type Request struct {
	SourceImage string
	Mode        Mode
	StyleName   string
	Enhancement *EnhancementSettings
	Prompt      string
}

// Result holds the public URLs of the committed output files.
type Result struct {
	ProcessedURL string `json:"processedUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// SourceImage is an image ready to be sent to a vision model.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Name     string
}

// Describer turns an image plus an instruction into a textual description of
// the desired output.
type Describer interface {
	Describe(ctx context.Context, source SourceImage, instruction string) (string, error)
}

// Generator renders exactly one image for prompt and returns where it can be
// downloaded.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
