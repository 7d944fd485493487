package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/alexedwards/scs/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/internal/auth"
)

var _ = Describe("Guard", func() {
	var (
		sessions *scs.SessionManager
		store    *auth.RoleStore
		guard    *auth.Guard
	)

	BeforeEach(func() {
		sessions = scs.New()
		store = auth.NewRoleStore(sessions)
		guard = auth.NewGuard(store)
	})

	// serveAs runs the wrapped handler with a session already holding the
	// given raw account type ("" for a guest).
	serveAs := func(accountType string, wrapped http.Handler) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		outer := sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if accountType != "" {
				Expect(store.SignIn(r.Context(), &auth.Account{
					ID:       "acc-1",
					Username: "someone",
					Email:    "someone@campus.example",
					Type:     accountType,
				})).To(Succeed())
			}
			wrapped.ServeHTTP(w, r)
		}))
		outer.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		return w
	}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	Describe("RequirePage", func() {
		It("renders the page for the exact role", func() {
			w := serveAs("staff", guard.RequirePage(auth.RoleStaff)(okHandler))
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("sends a guest to login", func() {
			w := serveAs("", guard.RequirePage(auth.RoleStaff)(okHandler))
			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal(auth.LoginPath))
		})

		It("sends a mismatched role to its own landing", func() {
			w := serveAs("student", guard.RequirePage(auth.RoleStaff)(okHandler))
			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/student"))
		})

		It("treats the legacy publisher type as staff", func() {
			w := serveAs("publisher", guard.RequirePage(auth.RoleStaff)(okHandler))
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("RequireAny", func() {
		middleware := func() func(http.Handler) http.Handler {
			return guard.RequireAny(auth.RoleStaff, auth.RoleAdmin)
		}

		It("admits each allowed role", func() {
			Expect(serveAs("staff", middleware()(okHandler)).Code).To(Equal(http.StatusOK))
			Expect(serveAs("admin", middleware()(okHandler)).Code).To(Equal(http.StatusOK))
		})

		It("answers 403 in the documented shape", func() {
			w := serveAs("student", middleware()(okHandler))
			Expect(w.Code).To(Equal(http.StatusForbidden))

			var body struct {
				Error   string   `json:"error"`
				Message string   `json:"message"`
				Allowed []string `json:"allowed"`
				Role    string   `json:"role"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("forbidden"))
			Expect(body.Message).To(Equal("insufficient role"))
			Expect(body.Allowed).To(ConsistOf("staff", "admin"))
			Expect(body.Role).To(Equal("student"))
		})

		It("reports a guest caller as guest", func() {
			w := serveAs("", middleware()(okHandler))
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring(`"role":"guest"`))
		})

		It("injects the session user for the wrapped handler", func() {
			var seen *auth.SessionUser
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = auth.UserFromContext(r.Context())
			})
			serveAs("admin", middleware()(inner))
			Expect(seen).NotTo(BeNil())
			Expect(seen.Role).To(Equal(auth.RoleAdmin))
		})
	})

	Describe("RequireSession", func() {
		It("admits any signed-in role", func() {
			Expect(serveAs("student", guard.RequireSession()(okHandler)).Code).To(Equal(http.StatusOK))
		})

		It("answers 401 for a guest", func() {
			w := serveAs("", guard.RequireSession()(okHandler))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring(`"success":false`))
		})
	})

	Describe("Annotate", func() {
		It("injects the user when present and enforces nothing otherwise", func() {
			var seen *auth.SessionUser
			var found bool
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, found = auth.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			Expect(serveAs("", guard.Annotate()(inner)).Code).To(Equal(http.StatusOK))
			Expect(found).To(BeFalse())

			Expect(serveAs("student", guard.Annotate()(inner)).Code).To(Equal(http.StatusOK))
			Expect(seen).NotTo(BeNil())
		})
	})
})

var _ = Describe("RoleStore", func() {
	var (
		sessions *scs.SessionManager
		store    *auth.RoleStore
	)

	BeforeEach(func() {
		sessions = scs.New()
		store = auth.NewRoleStore(sessions)
	})

	withSession := func(fn func(ctx http.ResponseWriter, r *http.Request)) {
		h := sessions.LoadAndSave(http.HandlerFunc(fn))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}

	It("reads fail closed to guest", func() {
		withSession(func(_ http.ResponseWriter, r *http.Request) {
			Expect(store.Role(r.Context())).To(Equal(auth.RoleGuest))
		})
	})

	It("normalizes on write and is idempotent", func() {
		withSession(func(_ http.ResponseWriter, r *http.Request) {
			Expect(store.SetRole(r.Context(), "Publisher")).To(Equal(auth.RoleStaff))
			Expect(store.SetRole(r.Context(), "Publisher")).To(Equal(auth.RoleStaff))
			Expect(store.Role(r.Context())).To(Equal(auth.RoleStaff))
		})
	})

	It("clear returns the session to guest", func() {
		withSession(func(_ http.ResponseWriter, r *http.Request) {
			store.SetRole(r.Context(), "admin")
			store.ClearRole(r.Context())
			Expect(store.Role(r.Context())).To(Equal(auth.RoleGuest))
		})
	})

	It("sign-out destroys the whole session", func() {
		withSession(func(_ http.ResponseWriter, r *http.Request) {
			Expect(store.SignIn(r.Context(), &auth.Account{
				ID: "acc-1", Username: "someone", Type: "admin",
			})).To(Succeed())
			Expect(store.CurrentUser(r.Context())).NotTo(BeNil())

			Expect(store.SignOut(r.Context())).To(Succeed())
			Expect(store.CurrentUser(r.Context())).To(BeNil())
			Expect(store.Role(r.Context())).To(Equal(auth.RoleGuest))
		})
	})
})
