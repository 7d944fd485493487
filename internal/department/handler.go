package department

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/campuspub/publication-portal/internal/transport"
)

var supported = []language.Tag{
	language.English, // fallback
	language.Swedish,
}

var matcher = language.NewMatcher(supported)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(nil)}
}

// List returns the catalog localized per the Accept-Language header.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	_, index, _ := matcher.Match(tags...)
	swedish := supported[index] == language.Swedish

	items := All()
	for i := range items {
		if swedish {
			items[i].Name = items[i].NameSV
		} else {
			items[i].Name = items[i].NameEN
		}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
