package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/joho/godotenv"

	"taskhive/auth"
	"taskhive/config"
	"taskhive/handlers"
	"taskhive/store"
)

func main() {
	// .env is optional; the config file is the source of truth.
	_ = godotenv.Load()

	if err := config.LoadConfig("config.json"); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := auth.InitStore(); err != nil {
		log.Fatalf("Error initializing session store: %v", err)
	}

	st, err := store.Open(config.AppConfig.DatabasePath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer st.Close()

	// Sample data is restaged on every start when configured.
	if seed := config.AppConfig.SeedFile; seed != "" {
		if err := st.Seed(seed); err != nil {
			log.Fatalf("Error seeding database: %v", err)
		}
	}

	hasher := auth.NewHasher(config.AppConfig.CredentialScheme)
	if config.AppConfig.CredentialScheme != "bcrypt" {
		log.Println("WARNING: legacy credential scheme in use; passwords are not hashed. Set credential_scheme to \"bcrypt\".")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	if config.AppConfig.EnableCaptcha {
		r.Handle("/captcha/*", captcha.Server(captcha.StdWidth, captcha.StdHeight))
	}
	r.Mount("/", handlers.New(st, hasher).Routes())

	addr := fmt.Sprintf("%s:%d", config.AppConfig.ListenIP, config.AppConfig.ListenPort)
	log.Printf("Server starting on %s (%s)", addr, config.AppConfig.AppName)

	csrfMiddleware := csrf.Protect(
		[]byte(config.AppConfig.SessionKey),
		csrf.Secure(false), // Set to true in production with HTTPS
		csrf.Path("/"),
	)

	if err := http.ListenAndServe(addr, csrfMiddleware(r)); err != nil {
		log.Fatal(err)
	}
}
