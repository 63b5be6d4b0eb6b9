package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/speakdoc/internal/api/handlers"
	"github.com/nikhilbhutani/speakdoc/internal/api/middleware"
	"github.com/nikhilbhutani/speakdoc/internal/auth"
	"github.com/nikhilbhutani/speakdoc/internal/config"
	"github.com/nikhilbhutani/speakdoc/internal/speech"
)

// Dependencies are built once in main and shared by every handler. Jobs and
// Queue are optional; without them the /api/v1/jobs routes are not mounted.
type Dependencies struct {
	Speech *speech.Service
	Jobs   handlers.JobStore
	Queue  handlers.SpeechEnqueuer
	Checks map[string]handlers.Pinger
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Dependencies
	jwt  *auth.JWTMiddleware
	rl   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Dependencies) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
		jwt:  auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		rl:   middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

// Close stops background work owned by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	svc := rt.deps.Speech
	maxUpload := rt.cfg.Extraction.MaxUploadBytes

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))
	r.Use(rt.rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(svc.Synthesizer().Name(), rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Speech routes used by the browser frontends
	speechH := handlers.NewSpeechHandler(svc, maxUpload)
	r.Post("/text-to-speech", speechH.TextToSpeech)
	r.Post("/document-to-speech", speechH.DocumentToSpeech)
	r.Post("/synthesize", speechH.Synthesize)
	r.Post("/convert", speechH.Convert)

	audioH := handlers.NewAudioHandler(svc.Storage())
	r.Get("/audio/{name}", audioH.Serve)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		docH := handlers.NewDocumentHandler(svc.Extractor(), maxUpload)
		r.Post("/extract", docH.Extract)
		r.Get("/formats", docH.SupportedTypes)

		r.Get("/speech", speechH.List)
		r.Post("/speech", speechH.CreateFromDocument)

		if rt.deps.Jobs != nil && rt.deps.Queue != nil {
			jobH := handlers.NewJobHandler(svc.Extractor(), svc.Synthesizer(), rt.deps.Jobs, rt.deps.Queue, maxUpload)
			r.Route("/jobs", func(r chi.Router) {
				r.Post("/", jobH.Create)
				r.Get("/{id}", jobH.Get)
			})
		}
	})

	return r
}
