package routes

import (
	"net/http"

	"github.com/dreamtrack/dreamtrack/internal/app"
	"github.com/dreamtrack/dreamtrack/internal/handler"
	"github.com/dreamtrack/dreamtrack/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	week := handler.NewWeekHandler(app.RolloverService, app.CompletionService, app.WeekRepository)
	dream := handler.NewDreamHandler(app.DreamService)
	score := handler.NewScoreHandler(app.ScoringService, app.ArchiveRepository)
	connect := handler.NewConnectHandler(app.ConnectService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// Writes are rate limited per IP
	rateLimiter := middleware.RateLimitWrites()

	// Health
	mux.HandleFunc("GET /healthz", health.Healthz)

	// Week
	mux.HandleFunc("GET /api/week", middleware.RequireAuth(week.CurrentWeek))
	mux.HandleFunc("POST /api/week/goals/{id}/toggle", rateLimiter(middleware.RequireAuth(week.Toggle)))
	mux.HandleFunc("POST /api/week/goals/{id}/increment", rateLimiter(middleware.RequireAuth(week.Increment)))
	mux.HandleFunc("POST /api/week/goals/{id}/decrement", rateLimiter(middleware.RequireAuth(week.Decrement)))
	mux.HandleFunc("POST /api/week/goals/{id}/skip", rateLimiter(middleware.RequireAuth(week.Skip)))

	// Dreams
	mux.HandleFunc("GET /api/dreams", middleware.RequireAuth(dream.List))
	mux.HandleFunc("POST /api/dreams", rateLimiter(middleware.RequireAuth(dream.Create)))
	mux.HandleFunc("GET /api/dreams/{id}", middleware.RequireAuth(dream.Get))
	mux.HandleFunc("PUT /api/dreams/{id}", rateLimiter(middleware.RequireAuth(dream.Update)))
	mux.HandleFunc("DELETE /api/dreams/{id}", rateLimiter(middleware.RequireAuth(dream.Delete)))

	// Score
	mux.HandleFunc("GET /api/score", middleware.RequireAuth(score.Score))
	mux.HandleFunc("GET /api/archives", middleware.RequireAuth(score.Archives))

	// Connects
	mux.HandleFunc("GET /api/connects", middleware.RequireAuth(connect.List))
	mux.HandleFunc("POST /api/connects", rateLimiter(middleware.RequireAuth(connect.Create)))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.Cfg.JWTSecret),
	)
}
