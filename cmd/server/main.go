package main // Entry point package

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/audit"
	"github.com/nilemovies/admin-console/internal/config"
	"github.com/nilemovies/admin-console/internal/database"
	"github.com/nilemovies/admin-console/internal/handler"
	"github.com/nilemovies/admin-console/internal/router"
	"github.com/nilemovies/admin-console/internal/session"
	"github.com/nilemovies/admin-console/internal/upstream"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	api, err := upstream.New(cfg.APIBaseURL)
	if err != nil {
		log.Fatal(err)
	}

	// Redis backs sessions, caching and rate limiting.  When it is not
	// reachable the console still runs: sessions fall back to the
	// in-process store and the middleware collapses to no-ops.
	rdb := config.NewRedisClient()
	var kv session.KV
	if rdb != nil {
		kv = session.NewRedisKV(rdb)
	} else {
		log.Printf("redis unavailable; sessions are in-process only")
		kv = session.NewMemoryKV()
	}
	ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
	store := session.NewStore(kv, ttl)
	codec := session.NewCookieCodec(cfg.SessionSecret, ttl)

	// The audit consumer drains console.audit into MySQL when a database
	// is configured, and into the process log otherwise.
	go startAuditConsumer()

	a := handler.NewAuthHandler(api, store, codec)
	m := handler.NewMovieHandler(cfg, api)
	d := handler.NewDashboardHandler(api)
	u := handler.NewUserHandler(api)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, a, rdb)
	router.RegisterConsole(e, a, m, d, u, store, codec, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, upstream=%s)", addr, cfg.Env, cfg.APIBaseURL)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// startAuditConsumer opens the audit database when AUDIT_DB_HOST is set
// and runs the queue consumer.  Database trouble downgrades the trail to
// the process log rather than stopping the console.
func startAuditConsumer() {
	var db *sql.DB
	if host := os.Getenv("AUDIT_DB_HOST"); host != "" {
		var err error
		db, err = database.Open(
			os.Getenv("AUDIT_DB_USER"),
			os.Getenv("AUDIT_DB_PASS"),
			host,
			os.Getenv("AUDIT_DB_PORT"),
			os.Getenv("AUDIT_DB_NAME"),
		)
		if err != nil {
			log.Printf("audit db unavailable, logging events instead: %v", err)
			db = nil
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := database.EnsureAuditSchema(ctx, db); err != nil {
				log.Printf("audit schema: %v", err)
			}
			cancel()
		}
	}
	if err := audit.StartConsumer(db); err != nil {
		log.Printf("audit consumer stopped: %v", err)
	}
}
