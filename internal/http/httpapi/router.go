package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Shaharyar2310/silkif.y/internal/http/handlers"
	"github.com/Shaharyar2310/silkif.y/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(app.Config.CORSAllowedOrigins),
		app.Sessions.Session,
		app.KnownUser,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/styles", app.Styles)

		r.Route("/images", func(r chi.Router) {
			// bounds model spend and upload disk use
			limited := r.With(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			limited.Post("/upload", app.ImagesUpload)
			limited.Post("/style", app.ImagesStyle)
			limited.Post("/enhance", app.ImagesEnhance)
			limited.Post("/generate", app.ImagesGenerate)
			r.Get("/history", app.ImagesHistory)
			r.Delete("/history", app.ImagesHistoryClear)
			r.Get("/history/archive", app.ImagesHistoryArchive)
		})

		r.Get("/settings", app.SettingsGet)
		r.Post("/settings", app.SettingsSave)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.AuthRegister)
			r.Post("/login", app.AuthLogin)
			r.Post("/logout", app.AuthLogout)
			r.Get("/me", app.Me)
		})
	})

	r.Get("/uploads/{filename}", app.ServeUpload)

	return r
}
