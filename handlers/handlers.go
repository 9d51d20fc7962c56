package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"taskhive/auth"
	"taskhive/config"
	"taskhive/store"
)

// Handlers holds the request handlers and their dependencies. Identity
// is resolved per request from the session cookie; the store handle is
// fixed at construction.
type Handlers struct {
	store   *store.Store
	hasher  auth.Hasher
	limiter *rateLimiter
}

func New(st *store.Store, hasher auth.Hasher) *Handlers {
	h := &Handlers{store: st, hasher: hasher}
	if config.AppConfig.EnableRateLimit {
		h.limiter = newRateLimiter()
	}
	return h
}

// Routes builds the application router. Every response carries
// cache-disabling headers.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(noCache)

	r.Get("/", h.Index)
	r.Post("/", h.Index)
	r.Get("/edit/{taskID}", h.Edit)
	r.Post("/edit/{taskID}", h.Edit)
	r.Get("/new", h.NewTask)
	r.Post("/new", h.NewTask)
	r.Get("/register", h.Register)
	r.Post("/register", h.Register)
	r.Get("/login", h.Login)
	r.Post("/login", h.Login)
	r.Get("/account", h.Account)
	r.Post("/account", h.Account)
	r.Get("/logout", h.Logout)

	return r
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// Index renders the task list, or the login view for anonymous
// visitors. A POST is either a completion toggle (the form's single
// field name is the task id) or, with an empty form, a clear-all that
// resets every completion flag for the calling user.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		r.ParseForm()
		keys := formKeys(r)
		if len(keys) > 0 {
			// The toggle statement is keyed on the bare task id,
			// without an ownership check. See DESIGN.md.
			if id, err := strconv.Atoi(keys[0]); err == nil {
				if err := h.store.ToggleComplete(id); err != nil {
					log.Printf("toggle task %d: %v", id, err)
				}
				if err := h.store.SpawnSuccessor(id); err != nil {
					log.Printf("spawn successor for task %d: %v", id, err)
				}
			}
		} else {
			if err := h.store.ResetComplete(auth.GetUserID(r)); err != nil {
				log.Printf("reset completions: %v", err)
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	userID := auth.GetUserID(r)
	if userID == 0 {
		h.render(w, r, "login.html", nil)
		return
	}

	tasks, err := h.store.PendingTasks(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "index.html", map[string]any{"Buckets": store.Buckets(tasks)})
}

// Edit shows and applies changes to one task, scoped to the caller. An
// unknown id and a foreign task look the same: silent redirect home.
func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)
	if userID == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	taskID, err := strconv.Atoi(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		r.ParseForm()
		if _, ok := r.PostForm["delete"]; ok {
			if err := h.store.DeleteTask(userID, taskID); err != nil {
				log.Printf("delete task %d: %v", taskID, err)
			}
		} else {
			freq, _ := strconv.Atoi(r.FormValue("dropdown"))
			if err := h.store.UpdateTask(userID, taskID, r.FormValue("title"), r.FormValue("date"), freq); err != nil {
				log.Printf("update task %d: %v", taskID, err)
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	task, err := h.store.TaskFor(userID, taskID)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "edit.html", map[string]any{"Task": task})
}

// NewTask shows the creation form and inserts submitted tasks. No
// field validation: title and date are stored as submitted.
func (h *Handlers) NewTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)
	if userID == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		freq, _ := strconv.Atoi(r.FormValue("dropdown"))
		if err := h.store.CreateTask(userID, r.FormValue("title"), r.FormValue("date"), freq); err != nil {
			log.Printf("create task: %v", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, "new.html", nil)
}

// Register creates an account and logs it straight in. Any prior
// session is forgotten first, for GET and POST alike.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	flashes := auth.TakeFlashes(w, r)
	auth.ClearSession(w, r)

	if r.Method == http.MethodPost {
		username := r.FormValue("username")

		if config.AppConfig.EnableCaptcha {
			if !captcha.VerifyString(r.FormValue("captchaId"), r.FormValue("captchaSolution")) {
				auth.Flash(w, r, "ERROR: invalid captcha")
				http.Redirect(w, r, "/register", http.StatusSeeOther)
				return
			}
		}

		_, err := h.store.UserByName(username)
		if err == nil {
			auth.Flash(w, r, "ERROR: invalid username")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		if !errors.Is(err, store.ErrUserNotFound) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		// The lookup above can race a concurrent insert; the duplicate
		// from CreateUser lands on the same fallback as any other
		// storage failure.
		id, err := h.store.CreateUser(username, h.hasher.Hash(r.FormValue("password")))
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		auth.SetSession(w, r, id)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]any{"Flashes": flashes}
	if config.AppConfig.EnableCaptcha {
		data["CaptchaID"] = captcha.New()
	}
	h.render(w, r, "register.html", data)
}

// Login authenticates by username and password. A missing user and a
// wrong password both end back at the login form; only the wrong
// password sets a flash.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	flashes := auth.TakeFlashes(w, r)
	auth.ClearSession(w, r)

	if r.Method == http.MethodPost {
		ip := clientIP(r)
		if h.limiter != nil && !h.limiter.Allow(ip) {
			auth.Flash(w, r, "ERROR: too many attempts, try again later")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := h.store.UserByName(r.FormValue("username"))
		if err != nil {
			if h.limiter != nil {
				h.limiter.RecordFailure(ip)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if !h.hasher.Verify(r.FormValue("password"), user.Hash) {
			if h.limiter != nil {
				h.limiter.RecordFailure(ip)
			}
			auth.Flash(w, r, "ERROR: invalid username/password combination")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if h.limiter != nil {
			h.limiter.Reset(ip)
		}
		auth.SetSession(w, r, user.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, r, "login.html", map[string]any{"Flashes": flashes})
}

// Account lets the caller change their password or delete the account
// along with every task it owns.
func (h *Handlers) Account(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	if r.Method == http.MethodPost {
		if userID == 0 {
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}
		r.ParseForm()

		if _, ok := r.PostForm["delete"]; ok {
			stored, err := h.store.UserHash(userID)
			if err != nil {
				http.Redirect(w, r, "/account", http.StatusSeeOther)
				return
			}
			if !h.hasher.Verify(r.FormValue("current"), stored) {
				auth.Flash(w, r, "ERROR: invalid password")
				http.Redirect(w, r, "/account", http.StatusSeeOther)
				return
			}
			if err := h.store.DeleteUser(userID); err != nil {
				http.Redirect(w, r, "/account", http.StatusSeeOther)
				return
			}
			auth.ClearSession(w, r)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if r.FormValue("new") != r.FormValue("new2") {
			auth.Flash(w, r, "ERROR: new password & confirmation must match")
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}

		stored, err := h.store.UserHash(userID)
		if err != nil {
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}
		// A wrong current password redirects without a flash here,
		// unlike the delete path above.
		if !h.hasher.Verify(r.FormValue("current"), stored) {
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}
		if err := h.store.UpdateHash(userID, h.hasher.Hash(r.FormValue("new"))); err != nil {
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if userID == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "account.html", nil)
}

// Logout clears the session; the list view then renders anonymously.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formKeys returns the submitted field names, skipping the csrf token
// the middleware injects into every form.
func formKeys(r *http.Request) []string {
	var keys []string
	for k := range r.PostForm {
		if k == "gorilla.csrf.Token" {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = auth.TakeFlashes(w, r)
	}
	if _, ok := data["AppName"]; !ok {
		data["AppName"] = config.AppConfig.AppName
	}
	data["csrfField"] = csrf.TemplateField(r)

	funcMap := template.FuncMap{
		"dict": func(pairs ...any) map[string]any {
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					continue
				}
				m[key] = pairs[i+1]
			}
			return m
		},
	}

	dir := config.AppConfig.TemplateDir
	tmpl, err := template.New(name).Funcs(funcMap).ParseFiles(dir+"/layout.html", dir+"/"+name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpl.ExecuteTemplate(w, "layout", data)
}
