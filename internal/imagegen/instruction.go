package imagegen

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

const (
	StyleGhibli = "Ghibli Art"
	StyleAnime  = "Anime Pop"
	StyleSketch = "Sketch"
	StyleSciFi  = "Sci-Fi Neon"
)

const fallbackStyleInstruction = "Transform the provided image into a stylized version while maintaining the key elements and composition."

const noWatermarkSuffix = "Do not add any text or watermarks."

var styleOrder = []string{StyleGhibli, StyleAnime, StyleSketch, StyleSciFi}

var styleInstructions = map[string]string{
	StyleGhibli: "You are an expert image stylist specializing in Studio Ghibli art style. Transform the provided image into an illustration that perfectly captures the whimsical, detailed, and colorful aesthetic of Studio Ghibli animations. Maintain the composition and main elements, but reimagine them with hand-drawn quality, soft color palettes, and the magical atmosphere characteristic of Ghibli films like 'Spirited Away' or 'My Neighbor Totoro'.",
	StyleAnime:  "You are an expert image stylist specializing in modern anime pop art. Transform the provided image into a vibrant anime illustration with bold outlines, exaggerated features, and bright color schemes. Add dynamic elements typical of anime such as speed lines, expressive eyes, and stylized proportions. Emphasize a energetic, colorful aesthetic similar to contemporary anime shows.",
	StyleSketch: "You are an expert image stylist specializing in sketch art. Transform the provided image into a detailed pencil sketch drawing. Convert the colors to grayscale, emphasize lines and edges, add appropriate shading and texture, and give it an authentic hand-drawn quality with visible pencil strokes. The final result should look like it was skillfully sketched by an artist in a sketchbook.",
	StyleSciFi:  "You are an expert image stylist specializing in cyberpunk and sci-fi neon aesthetics. Transform the provided image with a futuristic cyberpunk style featuring bright neon colors (primarily blue, purple, and pink), high contrast, digital glitch effects, and a night-time urban atmosphere. Add subtle tech elements like circuit patterns, holographic overlays, or digital interfaces where appropriate. The image should evoke the aesthetic of films like 'Blade Runner' or 'Ghost in the Shell'.",
}

var foldedStyles = func() map[string]string {
	fold := cases.Fold()
	out := make(map[string]string, len(styleInstructions))
	for name := range styleInstructions {
		out[fold.String(name)] = name
	}
	return out
}()

// canonicalStyle resolves name to a catalogue entry, exact match first and
// then case-insensitively.
func canonicalStyle(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := styleInstructions[name]; ok {
		return name, true
	}
	canonical, ok := foldedStyles[cases.Fold().String(name)]
	return canonical, ok
}

// KnownStyle reports whether name maps to a hand-written style instruction.
func KnownStyle(name string) bool {
	_, ok := canonicalStyle(name)
	return ok
}

// StyleNames lists the catalogue in display order.
func StyleNames() []string {
	out := make([]string, len(styleOrder))
	copy(out, styleOrder)
	return out
}

// StyleInstruction returns the system instruction for a named style. Unknown
// names get the generic stylization instruction.
func StyleInstruction(styleName string) string {
	if canonical, ok := canonicalStyle(styleName); ok {
		return styleInstructions[canonical]
	}
	return fallbackStyleInstruction
}

// EnhancementInstruction renders settings into a photo-editing instruction.
// Clauses follow a fixed field order so equal settings give equal output.
func EnhancementInstruction(settings EnhancementSettings) string {
	var clauses []string
	if settings.Brightness != 0 {
		clauses = append(clauses, signedClause("brightness", settings.Brightness))
	}
	if settings.Contrast != 0 {
		clauses = append(clauses, signedClause("contrast", settings.Contrast))
	}
	if settings.Sharpness > 0 {
		clauses = append(clauses, fmt.Sprintf("Enhance sharpness by %d%%.", settings.Sharpness))
	}
	if settings.AutoEnhance {
		clauses = append(clauses, "Automatically enhance overall image quality with balanced adjustments to color, saturation, and lighting.")
	}
	if settings.Denoise {
		clauses = append(clauses, "Reduce noise and grain while preserving important details.")
	}
	if settings.Upscale {
		clauses = append(clauses, "Increase resolution and clarity using AI upscaling techniques.")
	}
	if settings.BgRemove {
		clauses = append(clauses, "Remove or blur the background to make the subject stand out more.")
	}
	if settings.FaceRetouch {
		clauses = append(clauses, "Apply subtle face retouching to improve skin appearance while maintaining natural look.")
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "Apply standard image enhancement to improve clarity and visual appeal.")
	}
	return "You are an expert photo editor. Enhance the provided image with the following adjustments: " +
		strings.Join(clauses, " ") +
		" The final result should look professionally edited and natural."
}

func signedClause(field string, value int) string {
	verb := "Increase"
	if value < 0 {
		verb = "Decrease"
		value = -value
	}
	return fmt.Sprintf("%s %s by %d%%.", verb, field, value)
}

// DescriptionGenerationPrompt builds the text-to-image prompt from a vision
// model description.
func DescriptionGenerationPrompt(description string) string {
	return "Based on this image description: " + strings.TrimSpace(description) + ". " + noWatermarkSuffix
}

// TextGenerationPrompt builds the text-to-image prompt for a user prompt.
func TextGenerationPrompt(prompt string) string {
	return strings.TrimSpace(prompt) + ". " + noWatermarkSuffix
}
