package handlers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

const uploadField = "image"

// multipart framing allowance on top of the file size limit
const multipartOverhead = 64 << 10

var errFileTooLarge = errors.New("file too large")

func (a *App) ImagesUpload(w http.ResponseWriter, r *http.Request) {
	limit := a.Config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "No image file provided")
		return
	}

	name, data, err := readImagePart(mr, limit)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, errFileTooLarge), errors.As(err, &maxErr):
			a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("File too large, limit is %d bytes", limit))
		case errors.Is(err, errNotImage):
			a.error(w, http.StatusBadRequest, "bad_request", "Only image files are allowed")
		case errors.Is(err, errNoImage):
			a.error(w, http.StatusBadRequest, "bad_request", "No image file provided")
		default:
			a.log(r).Warn().Err(err).Msg("read multipart upload")
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart body")
		}
		return
	}

	filename := uploadFilename(time.Now(), name)
	key, err := a.Files.Write(r.Context(), filename, data)
	if err != nil {
		a.log(r).Error().Err(err).Str("file", filename).Msg("store upload")
		a.error(w, http.StatusInternalServerError, "internal", "Error uploading image")
		return
	}
	url := a.publicURL(key)

	if userID, ok := a.currentUserID(r); ok {
		if _, err := a.Store.SaveImage(r.Context(), domain.NewImageRecord{
			UserID:         &userID,
			OriginalURL:    url,
			ProcessingType: domain.ProcessingUpload,
		}); err != nil {
			a.log(r).Error().Err(err).Msg("record upload")
			a.error(w, http.StatusInternalServerError, "internal", "Error uploading image")
			return
		}
	}

	a.log(r).Info().Str("file", key).Int("bytes", len(data)).Msg("image uploaded")
	a.json(w, http.StatusOK, map[string]string{
		"message": "Image uploaded successfully",
		"url":     url,
		"file":    key,
	})
}

var (
	errNoImage  = errors.New("no image part")
	errNotImage = errors.New("part is not an image")
)

// readImagePart scans the multipart stream for the image field and reads at
// most limit bytes of it.
func readImagePart(mr *multipart.Reader, limit int64) (string, []byte, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, errNoImage
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		defer part.Close()
		if !strings.HasPrefix(strings.ToLower(part.Header.Get("Content-Type")), "image/") {
			return "", nil, errNotImage
		}
		data, err := io.ReadAll(io.LimitReader(part, limit+1))
		if err != nil {
			return "", nil, err
		}
		if int64(len(data)) > limit {
			return "", nil, errFileTooLarge
		}
		if len(data) == 0 {
			return "", nil, errNoImage
		}
		return part.FileName(), data, nil
	}
}

// uploadFilename builds <unixmillis>-<random hex>-<sanitized name>.
func uploadFilename(now time.Time, original string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), random, sanitizeFilename(original))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	if out == "" {
		return "image"
	}
	return out
}

// ServeUpload streams a committed file from the upload directory.
func (a *App) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, err := a.Files.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.log(r).Debug().Err(err).Str("file", name).Msg("open upload")
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
