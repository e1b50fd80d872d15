package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/lekarna/internal/auth"
	"github.com/erazemk/lekarna/internal/expiry"
	"github.com/erazemk/lekarna/internal/store"
	webembed "github.com/erazemk/lekarna/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDay": func(d civil.Date) string {
			return d.In(time.UTC).Format("Jan 2, 2006")
		},
		"optionalDay": func(d *civil.Date) string {
			if d == nil {
				return ""
			}
			return d.In(time.UTC).Format("Jan 2, 2006")
		},
		// dayInput is the value of an <input type="date">.
		"dayInput": func(d *civil.Date) string {
			if d == nil {
				return ""
			}
			return d.String()
		},
		"kindColor": func(k expiry.Kind) string { return k.Color() },
		"urgencyLabel": func(u expiry.Urgency) string {
			switch u {
			case expiry.UrgencyToday:
				return "Expires today"
			case expiry.UrgencyTomorrow:
				return "Expires tomorrow"
			default:
				return string(u)
			}
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"calendar.html",
		"settings.html",
		"medications.html",
		"medication_edit.html",
		"vitamins.html",
		"vitamin_edit.html",
		"products.html",
		"product_edit.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB         *sql.DB
	Records    store.Records
	Aggregator *expiry.Aggregator
	Templates  *Templates
	JWTSecret  string
	TokenTTL   time.Duration
	Now        func() time.Time

	drawers drawerSet
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// drawerSet keeps one dashboard drawer per signed-in user so a delete acts on
// the snapshot the user was shown. A drawer not used for longer than ttl is
// dropped; by then the session that showed it has expired.
type drawerSet struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*drawerEntry
}

type drawerEntry struct {
	drawer   *expiry.Drawer
	lastUsed time.Time
}

func (ds *drawerSet) get(agg *expiry.Aggregator, ownerID string, now time.Time) *expiry.Drawer {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.m == nil {
		ds.m = make(map[string]*drawerEntry)
	}
	ds.evictLocked(now)

	e, ok := ds.m[ownerID]
	if !ok {
		e = &drawerEntry{drawer: expiry.NewDrawer(agg, ownerID)}
		ds.m[ownerID] = e
	}
	e.lastUsed = now
	return e.drawer
}

func (ds *drawerSet) evictLocked(now time.Time) {
	ttl := ds.ttl
	if ttl <= 0 {
		ttl = auth.DefaultTTL
	}
	for id, e := range ds.m {
		if now.Sub(e.lastUsed) > ttl {
			delete(ds.m, id)
		}
	}
}

func (ds *drawerSet) drop(ownerID string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.m, ownerID)
}

func (ds *drawerSet) size() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.m)
}
