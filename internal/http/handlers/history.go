package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strconv"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
	"github.com/Shaharyar2310/silkif.y/pkg/zip"
)

// ImagesHistory lists the caller's records newest first. Anonymous callers
// get an empty list rather than an error.
func (a *App) ImagesHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.json(w, http.StatusOK, []domain.ImageRecord{})
		return
	}
	images, err := a.Store.GetUserImages(r.Context(), userID)
	if err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("fetch image history")
		a.error(w, http.StatusInternalServerError, "internal", "Error fetching image history")
		return
	}
	if images == nil {
		images = []domain.ImageRecord{}
	}
	a.json(w, http.StatusOK, images)
}

func (a *App) ImagesHistoryClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	if err := a.Store.ClearUserImages(r.Context(), userID); err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("clear image history")
		a.error(w, http.StatusInternalServerError, "internal", "Error clearing image history")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Image history cleared successfully"})
}

// ImagesHistoryArchive zips the processed files of the caller's history that
// are still stored locally. Remote or missing files are skipped.
func (a *App) ImagesHistoryArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	images, err := a.Store.GetUserImages(r.Context(), userID)
	if err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("fetch image history")
		a.error(w, http.StatusInternalServerError, "internal", "Error fetching image history")
		return
	}

	assets := make([]zip.Asset, 0, len(images))
	for _, img := range images {
		src := img.OriginalURL
		if img.ProcessedURL != nil {
			src = *img.ProcessedURL
		}
		key, ok := imagegen.UploadKey(a.Config.BaseURL, src)
		if !ok {
			continue
		}
		data, err := a.Files.Read(r.Context(), key)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				a.log(r).Warn().Err(err).Str("file", key).Msg("read history file")
			}
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: strconv.FormatInt(img.ID, 10) + "-" + key,
			MIME:     mimeForKey(key),
			Data:     data,
			Modified: img.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="silkify-history.zip"`)
	w.WriteHeader(http.StatusOK)
	if err := zip.WriteArchive(w, assets); err != nil {
		a.log(r).Error().Err(err).Msg("write history archive")
	}
}

func mimeForKey(key string) string {
	switch path.Ext(key) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ""
}
