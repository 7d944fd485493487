package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/pkg/client"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		handler = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	newClient := func() *client.Client {
		return client.New(server.URL)
	}

	respondJSON := func(w http.ResponseWriter, status int, body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		Expect(json.NewEncoder(w).Encode(body)).To(Succeed())
	}

	Describe("List", func() {
		It("translates filters onto query parameters and statuses onto UI names", func() {
			var query map[string][]string
			handler = func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				respondJSON(w, 200, map[string]interface{}{
					"items": []map[string]interface{}{
						{"id": "req-1", "title": "Board Game Night", "status": "rejected"},
					},
					"total_count": 17,
				})
			}

			result, err := newClient().List(context.Background(), client.Filters{
				Department: "computer-science",
				Status:     client.StatusDenied,
				SearchText: "board",
				PageSize:   10,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(query["dept"]).To(Equal([]string{"computer-science"}))
			Expect(query["status"]).To(Equal([]string{"rejected"}))
			Expect(query["q"]).To(Equal([]string{"board"}))
			Expect(query["page"]).To(Equal([]string{"1"}))
			Expect(query["page_size"]).To(Equal([]string{"10"}))

			Expect(result.TotalCount).To(Equal(int64(17)))
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].Status).To(Equal(client.StatusDenied))
		})

		It("omits the all sentinel filters", func() {
			var query map[string][]string
			handler = func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				respondJSON(w, 200, map[string]interface{}{"items": []interface{}{}, "total_count": 0})
			}

			_, err := newClient().List(context.Background(), client.Filters{Department: "all", Status: "All"})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).NotTo(HaveKey("dept"))
			Expect(query).NotTo(HaveKey("status"))
		})

		It("reports a missing items array as a malformed response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, 200, map[string]interface{}{"total_count": 0})
			}

			_, err := newClient().List(context.Background(), client.Filters{})
			Expect(client.IsKind(err, client.KindMalformedResponse)).To(BeTrue())
		})

		It("reports a non-array items value as a malformed response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, 200, map[string]interface{}{"items": "nope"})
			}

			_, err := newClient().List(context.Background(), client.Filters{})
			Expect(client.IsKind(err, client.KindMalformedResponse)).To(BeTrue())
		})

		It("reports an HTML body as a non-JSON failure carrying the raw body", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>session expired</html>"))
			}

			_, err := newClient().List(context.Background(), client.Filters{})
			Expect(client.IsKind(err, client.KindNonJSON)).To(BeTrue())
			Expect(err.(*client.Error).Message).To(ContainSubstring("session expired"))
		})

		It("maps a 403 onto the forbidden kind with a fixed user message", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, 403, map[string]interface{}{
					"error":   "forbidden",
					"message": "insufficient role",
					"allowed": []string{"staff", "admin"},
					"role":    "student",
				})
			}

			_, err := newClient().List(context.Background(), client.Filters{})
			Expect(client.IsKind(err, client.KindForbidden)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("permission"))
		})

		It("maps other error statuses onto the http kind", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(500)
			}

			_, err := newClient().List(context.Background(), client.Filters{})
			Expect(client.IsKind(err, client.KindHTTP)).To(BeTrue())
			Expect(err.(*client.Error).StatusCode).To(Equal(500))
		})
	})

	Describe("Create", func() {
		It("sends a plain JSON body when there are no attachments", func() {
			var contentType string
			var body map[string]interface{}
			handler = func(w http.ResponseWriter, r *http.Request) {
				contentType = r.Header.Get("Content-Type")
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				respondJSON(w, 201, map[string]interface{}{"success": true, "id": "req-9", "status": "pending"})
			}

			record, err := newClient().Create(context.Background(), client.Payload{
				Title: "Spring Hackathon", Author: "Jonas", Email: "jonas@campus.example", Date: "2026-09-12",
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(contentType).To(Equal("application/json"))
			Expect(body["title"]).To(Equal("Spring Hackathon"))
			Expect(body["departments"]).To(Equal([]interface{}{}))
			Expect(record.ID).To(Equal("req-9"))
		})

		It("sends canonical multipart strings and one file part per attachment", func() {
			var form map[string][]string
			var fileNames []string
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.ParseMultipartForm(32 << 20)).To(Succeed())
				form = r.MultipartForm.Value
				for _, fh := range r.MultipartForm.File["attachments"] {
					fileNames = append(fileNames, fh.Filename)
					f, err := fh.Open()
					Expect(err).NotTo(HaveOccurred())
					content, err := io.ReadAll(f)
					Expect(err).NotTo(HaveOccurred())
					Expect(content).NotTo(BeEmpty())
				}
				respondJSON(w, 201, map[string]interface{}{"success": true, "id": "req-9", "status": "pending"})
			}

			max := 120
			_, err := newClient().Create(context.Background(), client.Payload{
				Title:        "Spring Hackathon",
				Author:       "Jonas",
				Email:        "jonas@campus.example",
				Date:         "2026-09-12",
				OnCampus:     true,
				MaxAttendees: &max,
				Departments:  []string{"computer-science", "mathematics"},
			}, []client.Attachment{
				{Filename: "poster.pdf", Content: []byte("%PDF")},
				{Filename: "schedule.png", Content: []byte("PNG")},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(form["on_campus"]).To(Equal([]string{"true"}))
			Expect(form["publish_all"]).To(Equal([]string{"false"}))
			Expect(form["max_attendees"]).To(Equal([]string{"120"}))

			var departments []string
			Expect(json.Unmarshal([]byte(form["departments"][0]), &departments)).To(Succeed())
			Expect(departments).To(Equal([]string{"computer-science", "mathematics"}))

			Expect(fileNames).To(Equal([]string{"poster.pdf", "schedule.png"}))
		})
	})

	Describe("UpdateStatus", func() {
		It("translates the denied UI name onto the wire and back", func() {
			var body map[string]string
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				respondJSON(w, 200, map[string]interface{}{
					"success": true, "id": body["id"], "status": "rejected", "feedback": body["feedback"],
				})
			}

			record, err := newClient().UpdateStatus(context.Background(), "req-1", client.StatusDenied, "date clash")
			Expect(err).NotTo(HaveOccurred())
			Expect(body["status"]).To(Equal("rejected"))
			Expect(record.Status).To(Equal(client.StatusDenied))
			Expect(record.Feedback).To(Equal("date clash"))
		})

		It("surfaces the not-found business rule from a 200 body", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, 200, map[string]interface{}{"success": false, "message": "not found"})
			}

			_, err := newClient().UpdateStatus(context.Background(), "req-404", client.StatusApproved, "")
			Expect(client.IsKind(err, client.KindBusinessRule)).To(BeTrue())
			Expect(err.Error()).To(Equal("not found"))
		})
	})

	Describe("Calendar", func() {
		It("decodes the published events", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("start")).To(Equal("2026-09-01"))
				Expect(r.URL.Query().Get("end")).To(Equal("2026-09-30"))
				respondJSON(w, 200, map[string]interface{}{
					"items": []map[string]interface{}{
						{"id": "evt-1", "title": "Career Fair 2026", "start": "2026-09-12T16:00:00Z"},
					},
				})
			}

			items, err := newClient().Calendar(context.Background(), "2026-09-01", "2026-09-30")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Title).To(Equal("Career Fair 2026"))
		})
	})
})

var _ = Describe("Status translation", func() {
	It("round-trips the denied alias", func() {
		Expect(client.UIToAPIStatus(client.StatusDenied)).To(Equal("rejected"))
		Expect(client.APIToUIStatus("rejected")).To(Equal(client.StatusDenied))
	})

	It("leaves the shared names untouched", func() {
		Expect(client.UIToAPIStatus(client.StatusPending)).To(Equal("pending"))
		Expect(client.UIToAPIStatus(client.StatusApproved)).To(Equal("approved"))
		Expect(client.APIToUIStatus("pending")).To(Equal("pending"))
	})
})
