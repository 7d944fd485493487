package landing

import (
	"html/template"
	"net/http"

	"github.com/campuspub/publication-portal/internal/auth"
	"github.com/campuspub/publication-portal/internal/transport"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | Campus Publication Portal</title></head>
<body data-navbar="{{.Navbar}}" data-role="{{.Role}}">
<nav class="navbar navbar-{{.Navbar}}">
{{if eq .Navbar "public"}}<a href="/">Home</a> <a href="/login">Sign in</a>{{end}}
{{if eq .Navbar "student"}}<a href="/student">My events</a> <a href="/logout">Sign out</a>{{end}}
{{if eq .Navbar "staff"}}<a href="/staff">Moderation</a> <a href="/logout">Sign out</a>{{end}}
{{if eq .Navbar "admin"}}<a href="/admin">Administration</a> <a href="/logout">Sign out</a>{{end}}
</nav>
<main id="app" data-page="{{.Page}}"></main>
</body>
</html>
`))

type pageData struct {
	Title  string
	Page   string
	Navbar NavbarVariant
	Role   auth.Role
}

// Handler serves the page shells. The client application mounts into the
// shell; the navbar variant and role gate are decided server-side.
type Handler struct {
	*transport.BaseHandler
	Store *auth.RoleStore
}

func NewHandler(store *auth.RoleStore) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Store:       store,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, page string) {
	role := h.Store.Role(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTmpl.Execute(w, pageData{
		Title:  title,
		Page:   page,
		Navbar: NavbarFor(role),
		Role:   role,
	})
	if err != nil {
		h.Logger.Error("failed to render page", "error", err, "page", page)
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Welcome", "home")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	// signed-in users skip the login form
	if role := h.Store.Role(r.Context()); role != auth.RoleGuest {
		if landing, ok := auth.RoleLanding[role]; ok {
			http.Redirect(w, r, landing, http.StatusSeeOther)
			return
		}
	}
	h.render(w, r, "Sign in", "login")
}

func (h *Handler) Student(w http.ResponseWriter, r *http.Request) {
	h.Store.MarkLanding(r.Context(), "/student")
	h.render(w, r, "Student", "student")
}

func (h *Handler) Staff(w http.ResponseWriter, r *http.Request) {
	h.Store.MarkLanding(r.Context(), "/staff")
	h.render(w, r, "Moderation", "staff")
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	h.Store.MarkLanding(r.Context(), "/admin")
	h.render(w, r, "Administration", "admin")
}
