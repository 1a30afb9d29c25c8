// main.go
package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/r2w34/fb-ai-sys-sub001/cache"
	"github.com/r2w34/fb-ai-sys-sub001/config"
	"github.com/r2w34/fb-ai-sys-sub001/db"
	"github.com/r2w34/fb-ai-sys-sub001/metrics"
	"github.com/r2w34/fb-ai-sys-sub001/oauth"
	"github.com/r2w34/fb-ai-sys-sub001/pkg/facebook"
	"github.com/r2w34/fb-ai-sys-sub001/store"
)

// sessionCookieName is set by the host application when it embeds this
// service; it is the fallback shop source when the OAuth state is unusable.
const sessionCookieName = "fbads_shop"

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("🚀 Starting Facebook connect service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	log.Printf("🗄️ Initializing database...")
	database, err := db.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	m := metrics.Registry("fbads")
	statusCache := cache.New(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
	accounts := store.New(database)
	graph := facebook.NewClient(cfg.Facebook.AppID, cfg.Facebook.AppSecret, cfg.Facebook.RedirectURI, m)

	handler := oauth.NewHandler(
		graph,
		accounts,
		statusCache,
		oauth.CookieSessionResolver{CookieName: sessionCookieName},
		m,
		cfg.App.URL,
	)

	log.Printf("🛣️ Setting up routes...")
	router := http.NewServeMux()
	router.HandleFunc("/auth/facebook/connect", recoverMiddleware(handler.HandleConnect))
	router.HandleFunc("/auth/facebook/callback", recoverMiddleware(handler.HandleCallback))
	router.HandleFunc("/auth/facebook/status",
		recoverMiddleware(oauth.CorsMiddleware(cfg.App.AllowedOrigins, handler.HandleStatus)))
	router.HandleFunc("/auth/facebook/disconnect",
		recoverMiddleware(oauth.CorsMiddleware(cfg.App.AllowedOrigins, handler.HandleDisconnect)))
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("✅ Server initialization complete")
	log.Printf("🌐 Server starting on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, router))
}

func recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("❌ PANIC RECOVERED: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}
