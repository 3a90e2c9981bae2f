package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/edukit/classroom-sync/internal/api/http"
	"github.com/edukit/classroom-sync/internal/audit"
	"github.com/edukit/classroom-sync/internal/auth"
	"github.com/edukit/classroom-sync/internal/classroom"
	"github.com/edukit/classroom-sync/internal/config"
	"github.com/edukit/classroom-sync/internal/db"
	"github.com/edukit/classroom-sync/internal/gradesync"
	"github.com/edukit/classroom-sync/internal/ledger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := ledger.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewEventRepo(dbh)
	svc := gradesync.New(store, events, cfg.MaxAttempts, time.Now)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AdminUser, cfg.AdminPassHash)

	// Classroom capability per request: online builds a REST client from
	// the caller's bearer token; offline serves from local roster tables.
	var provider api.ClassroomProvider
	if cfg.Mode == config.ModeOnline {
		provider = func(r *http.Request) classroom.Classroom {
			return classroom.NewClient(classroom.ClientConfig{
				BaseURL:     cfg.ClassroomBaseURL,
				AccessToken: auth.BearerFromContext(r.Context()),
				Timeout:     cfg.ClassroomTimeout,
			})
		}
	} else {
		local := classroom.NewSQLClassroom(dbh)
		provider = func(*http.Request) classroom.Classroom { return local }
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	// Bearer-gated API. Offline mode validates locally-issued JWTs;
	// online mode passes the token through to the platform.
	var guard func(http.Handler) http.Handler
	if cfg.Mode == config.ModeOnline {
		guard = auth.BearerMiddleware()
	} else {
		guard = auth.JWTMiddleware(authSvc)
	}
	r.Group(func(pr chi.Router) {
		pr.Use(guard)
		pr.Route("/api", func(ar chi.Router) {
			ar.Post("/submit-to-classroom", api.SubmitGradeHandler(svc, provider))
			ar.Get("/student-attempts", api.StudentAttemptsHandler(svc))
			ar.Post("/reset-attempts", api.ResetAttemptsHandler(svc, provider))

			ar.Post("/status", api.CreateStatusCheckHandler(dbh))
			ar.Get("/status", api.ListStatusChecksHandler(dbh))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s, max_attempts=%d)",
		cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.MaxAttempts)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
