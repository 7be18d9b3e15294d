package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
	"github.com/Shaharyar2310/silkif.y/internal/middleware"
	"github.com/Shaharyar2310/silkif.y/internal/storage"
)

const maxJSONBody = 1 << 20

// ImageProcessor is the part of imagegen.Processor the handlers use.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, req imagegen.Request) (*imagegen.Result, error)
	GenerateImage(ctx context.Context, prompt string) (*imagegen.Result, error)
}

var _ ImageProcessor = (*imagegen.Processor)(nil)

type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Store    domain.Store
	Files    *storage.FileStore
	Images   ImageProcessor
	Sessions *middleware.SessionManager
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the JSON error envelope. message is what the web client shows.
func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// log returns the request-scoped logger installed by middleware.Logger.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// KnownUser demotes callers whose session names a user the store no longer
// has to anonymous and clears their cookie. Store failures leave the session
// as is so the handler reports them.
func (a *App) KnownUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := a.Store.GetUser(r.Context(), userID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				a.log(r).Warn().Err(err).Int64("user_id", userID).Msg("session user lookup failed")
				next.ServeHTTP(w, r)
				return
			}
			a.log(r).Info().Int64("user_id", userID).Msg("session for unknown user")
			a.Sessions.ClearCookie(w)
			r = r.WithContext(middleware.ContextWithoutUser(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) currentUserID(r *http.Request) (int64, bool) {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) publicURL(key string) string {
	return a.Config.BaseURL + imagegen.UploadsPath + key
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func strPtr(s string) *string { return &s }
