package routes

import (
	"github.com/Dosada05/brawl-tournament-system/handlers"
	"github.com/Dosada05/brawl-tournament-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает таблицу маршрутов API.
// Маршруты бота и маршала закрыты JWT, просмотр турниров публичный.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	configHandler *handlers.GuildConfigHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/signin", authHandler.SignIn)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)

		// Защищённые маршруты
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/start", tournamentHandler.StartHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogoHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)

			r.Post("/{tournamentID}/enroll", playerHandler.EnrollHandler)
			r.Post("/{tournamentID}/leave", playerHandler.LeaveHandler)

			r.Get("/{tournamentID}/players/{discordID}/match", matchHandler.GetPlayerMatchHandler)
			r.Post("/{tournamentID}/players/{discordID}/ready", matchHandler.ReadyHandler)
			r.Post("/{tournamentID}/players/{discordID}/submit", matchHandler.SubmitHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", playerHandler.RegisterHandler)
		r.Get("/{discordID}", playerHandler.ProfileHandler)
		r.Delete("/{discordID}", playerHandler.DeregisterHandler)
	})

	router.Route("/guild/config", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", configHandler.GetHandler)
		r.Put("/", configHandler.SetHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
}
