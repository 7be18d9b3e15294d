package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
)

type styleReq struct {
	ImageURL string `json:"imageUrl"`
	Style    string `json:"style"`
}

type enhanceReq struct {
	ImageURL string                        `json:"imageUrl"`
	Settings *imagegen.EnhancementSettings `json:"settings"`
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

func (a *App) ImagesStyle(w http.ResponseWriter, r *http.Request) {
	var req styleReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Style = strings.TrimSpace(req.Style)
	if req.ImageURL == "" || req.Style == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Image URL and style are required")
		return
	}
	if !imagegen.KnownStyle(req.Style) {
		a.log(r).Warn().Str("style", req.Style).Msg("unknown style, using generic instruction")
	}

	res, err := a.Images.ProcessImage(r.Context(), imagegen.Request{
		SourceImage: req.ImageURL,
		Mode:        imagegen.ModeStyle,
		StyleName:   req.Style,
	})
	if err != nil {
		a.processingError(w, r, err, "Error applying style to image")
		return
	}

	if userID, ok := a.currentUserID(r); ok {
		_, err := a.Store.SaveImage(r.Context(), domain.NewImageRecord{
			UserID:         &userID,
			OriginalURL:    req.ImageURL,
			ProcessedURL:   strPtr(res.ProcessedURL),
			ThumbnailURL:   strPtr(res.ThumbnailURL),
			Style:          strPtr(req.Style),
			ProcessingType: domain.ProcessingStyle,
		})
		if err != nil {
			a.processingError(w, r, err, "Error applying style to image")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{
		"message":      "Style applied successfully",
		"processedUrl": res.ProcessedURL,
	})
}

func (a *App) ImagesEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.ImageURL == "" || req.Settings == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Image URL and settings are required")
		return
	}
	if err := validateEnhancement(*req.Settings); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Message)
		return
	}

	res, err := a.Images.ProcessImage(r.Context(), imagegen.Request{
		SourceImage: req.ImageURL,
		Mode:        imagegen.ModeEnhance,
		Enhancement: req.Settings,
	})
	if err != nil {
		a.processingError(w, r, err, "Error enhancing image")
		return
	}

	if userID, ok := a.currentUserID(r); ok {
		meta, _ := json.Marshal(req.Settings)
		_, err := a.Store.SaveImage(r.Context(), domain.NewImageRecord{
			UserID:         &userID,
			OriginalURL:    req.ImageURL,
			ProcessedURL:   strPtr(res.ProcessedURL),
			ThumbnailURL:   strPtr(res.ThumbnailURL),
			ProcessingType: domain.ProcessingEnhance,
			Metadata:       meta,
		})
		if err != nil {
			a.processingError(w, r, err, "Error enhancing image")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{
		"message":      "Image enhanced successfully",
		"processedUrl": res.ProcessedURL,
	})
}

func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Prompt is required")
		return
	}

	res, err := a.Images.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		a.processingError(w, r, err, "Error generating image")
		return
	}

	if userID, ok := a.currentUserID(r); ok {
		_, err := a.Store.SaveImage(r.Context(), domain.NewImageRecord{
			UserID:         &userID,
			OriginalURL:    res.ProcessedURL,
			ProcessedURL:   strPtr(res.ProcessedURL),
			ThumbnailURL:   strPtr(res.ThumbnailURL),
			AIPrompt:       strPtr(req.Prompt),
			ProcessingType: domain.ProcessingGenerate,
		})
		if err != nil {
			a.processingError(w, r, err, "Error generating image")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{
		"message":  "Image generated successfully",
		"imageUrl": res.ProcessedURL,
	})
}

// Styles lists the named styles that have a dedicated instruction.
func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string][]string{"styles": imagegen.StyleNames()})
}

// processingError maps pipeline and store failures. Validation problems are
// the caller's fault; everything else is logged and hidden behind message.
func (a *App) processingError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		a.error(w, http.StatusBadRequest, "bad_request", ve.Message)
		return
	}
	evt := a.log(r).Error().Err(err)
	var ext *domain.ExternalServiceError
	if errors.As(err, &ext) {
		evt = evt.Str("service", ext.Service).Str("stage", ext.Stage).Str("detail", ext.Detail)
	}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		evt = evt.Str("url", fe.URL).Int("upstream_status", fe.StatusCode)
	}
	evt.Msg(message)
	a.error(w, http.StatusInternalServerError, "internal", message)
}

func validateEnhancement(s imagegen.EnhancementSettings) *domain.ValidationError {
	switch {
	case s.Brightness < -100 || s.Brightness > 100:
		return &domain.ValidationError{Field: "settings.brightness", Message: "brightness must be between -100 and 100"}
	case s.Contrast < -100 || s.Contrast > 100:
		return &domain.ValidationError{Field: "settings.contrast", Message: "contrast must be between -100 and 100"}
	case s.Sharpness < 0 || s.Sharpness > 100:
		return &domain.ValidationError{Field: "settings.sharpness", Message: "sharpness must be between 0 and 100"}
	}
	return nil
}
