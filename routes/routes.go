package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tabletennis-scoring/docs"
	"github.com/Dosada05/tabletennis-scoring/handlers"
	"github.com/Dosada05/tabletennis-scoring/middleware"
)

type Handlers struct {
	Match      *handlers.MatchHandler
	TeamMatch  *handlers.TeamMatchHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
	Format     *handlers.FormatHandler
}

func SetupRoutes(router chi.Router, jwtSecret []byte, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/ws", func(r chi.Router) {
		r.Get("/matches/{matchID}", h.WebSocket.ServeRoom("matchID"))
		r.Get("/team-matches/{teamMatchID}", h.WebSocket.ServeRoom("teamMatchID"))
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeRoom("tournamentID"))
	})

	router.Get("/formats", h.Format.GetAllFormats)
	router.Get("/formats/{format}", h.Format.GetFormatByID)

	authenticate := middleware.Authenticate(jwtSecret)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.Match.CreateMatch)
			r.Get("/{matchID}/server", h.Match.GetServer)
			r.Post("/{matchID}/start", h.Match.StartMatch)
			r.Post("/{matchID}/points", h.Match.ScorePoint)
			r.Post("/{matchID}/points/undo", h.Match.RetractPoint)
			r.Post("/{matchID}/games/{gameNumber}/score", h.Match.SetGameScore)
			r.Post("/{matchID}/games/{gameNumber}/reset", h.Match.ResetGame)
			r.Post("/{matchID}/reset", h.Match.ResetMatch)
			r.Post("/{matchID}/cancel", h.Match.CancelMatch)
		})
	})

	router.Route("/team-matches", func(r chi.Router) {
		r.Get("/{teamMatchID}", h.TeamMatch.GetTeamMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.TeamMatch.CreateTeamMatch)
			r.Put("/{teamMatchID}/lineup", h.TeamMatch.SetLineup)
			r.Post("/{teamMatchID}/cancel", h.TeamMatch.CancelTeamMatch)
			r.Post("/{teamMatchID}/submatches", h.TeamMatch.GenerateSubMatches)
			r.Post("/{teamMatchID}/submatches/{index}/points", h.TeamMatch.ScoreSubMatchPoint)
			r.Post("/{teamMatchID}/submatches/{index}/result", h.TeamMatch.RecordSubMatchResult)
			r.Post("/{teamMatchID}/submatches/{index}/reset", h.TeamMatch.ResetSubMatch)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/standings", h.Tournament.GetStandingsHandler)
		r.Get("/{tournamentID}/schedule", h.Tournament.GetScheduleHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.Tournament.CreateHandler)
			r.Post("/{tournamentID}/start", h.Tournament.StartHandler)
			r.Post("/{tournamentID}/standings/refresh", h.Tournament.RefreshStandingsHandler)
		})
	})
}
