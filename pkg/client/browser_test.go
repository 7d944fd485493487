package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/pkg/client"
)

// listServer serves pubreqfetch from an in-memory slice and records mutation
// calls, enough to drive the browser through its flows.
type listServer struct {
	mu       sync.Mutex
	items    []map[string]interface{}
	statuses []map[string]string
	deletes  []string
	updates  []map[string]interface{}
	failNext string // "" or a business-rule message for the next mutation
}

func (s *listServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		writeJSON := func(body interface{}) {
			Expect(json.NewEncoder(w).Encode(body)).To(Succeed())
		}
		failBusiness := func() bool {
			if s.failNext == "" {
				return false
			}
			message := s.failNext
			s.failNext = ""
			writeJSON(map[string]interface{}{"success": false, "message": message})
			return true
		}

		switch r.URL.Path {
		case "/api/req/pubreqfetch":
			writeJSON(map[string]interface{}{"items": s.items, "total_count": len(s.items)})
		case "/api/req/pubreqchangestatus":
			if failBusiness() {
				return
			}
			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			s.statuses = append(s.statuses, body)
			writeJSON(map[string]interface{}{"success": true, "id": body["id"], "status": body["status"]})
		case "/api/req/pubreqdelete":
			if failBusiness() {
				return
			}
			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			s.deletes = append(s.deletes, body["id"])
			writeJSON(map[string]interface{}{"success": true})
		case "/api/req/pubrequpdate":
			if failBusiness() {
				return
			}
			var body map[string]interface{}
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			s.updates = append(s.updates, body)
			body["success"] = true
			body["status"] = "pending"
			writeJSON(body)
		default:
			w.WriteHeader(404)
		}
	}
}

var _ = Describe("Browser", func() {
	var (
		backend *listServer
		server  *httptest.Server
		browser *client.Browser
	)

	BeforeEach(func() {
		backend = &listServer{
			items: []map[string]interface{}{
				{"id": "req-1", "title": "Spring Hackathon", "status": "pending", "author": "Jonas"},
				{"id": "req-2", "title": "Board Game Night", "status": "rejected", "author": "Mika"},
			},
		}
		server = httptest.NewServer(backend.handler())
		DeferCleanup(server.Close)
		browser = client.NewBrowser(client.New(server.URL))
	})

	It("starts browsing with an empty list", func() {
		Expect(browser.State()).To(Equal(client.StateBrowsing))
		Expect(browser.Items()).To(BeEmpty())
	})

	It("reload populates the list with UI status names", func() {
		Expect(browser.Reload(context.Background())).To(Succeed())
		items := browser.Items()
		Expect(items).To(HaveLen(2))
		Expect(items[1].Status).To(Equal(client.StatusDenied))
		Expect(browser.TotalCount()).To(Equal(int64(2)))
	})

	Describe("selection", func() {
		BeforeEach(func() {
			Expect(browser.Reload(context.Background())).To(Succeed())
		})

		It("opens a listed record", func() {
			Expect(browser.Select("req-1")).To(Succeed())
			Expect(browser.State()).To(Equal(client.StateViewing))
			Expect(browser.Selected().Title).To(Equal("Spring Hackathon"))
		})

		It("refuses an id outside the current list", func() {
			Expect(browser.Select("req-404")).To(MatchError(client.ErrUnknownRecord))
			Expect(browser.State()).To(Equal(client.StateBrowsing))
		})

		It("refuses selection outside browsing", func() {
			Expect(browser.Select("req-1")).To(Succeed())
			Expect(browser.Select("req-2")).To(MatchError(client.ErrNotBrowsing))
		})

		It("close drops the selection", func() {
			Expect(browser.Select("req-1")).To(Succeed())
			browser.Close()
			Expect(browser.State()).To(Equal(client.StateBrowsing))
			Expect(browser.Selected()).To(BeNil())
		})
	})

	Describe("editing", func() {
		BeforeEach(func() {
			Expect(browser.Reload(context.Background())).To(Succeed())
			Expect(browser.Select("req-1")).To(Succeed())
		})

		It("seeds the draft from the open record", func() {
			Expect(browser.BeginEdit()).To(Succeed())
			Expect(browser.Draft().Title).To(Equal("Spring Hackathon"))
			Expect(browser.Editing()).To(BeTrue())
		})

		It("save sends the draft and re-syncs from the server response", func() {
			Expect(browser.BeginEdit()).To(Succeed())
			draft := browser.Draft()
			draft.Title = "Spring Hackathon (rescheduled)"
			browser.SetDraft(draft)

			Expect(browser.Save(context.Background())).To(Succeed())
			Expect(browser.Editing()).To(BeFalse())
			Expect(browser.Selected().Title).To(Equal("Spring Hackathon (rescheduled)"))
			Expect(backend.updates).To(HaveLen(1))
			Expect(backend.updates[0]["id"]).To(Equal("req-1"))
		})

		It("a failed save keeps the draft for retry", func() {
			Expect(browser.BeginEdit()).To(Succeed())
			draft := browser.Draft()
			draft.Title = "Edited"
			browser.SetDraft(draft)
			backend.failNext = "not found"

			err := browser.Save(context.Background())
			Expect(client.IsKind(err, client.KindBusinessRule)).To(BeTrue())
			Expect(browser.Editing()).To(BeTrue())
			Expect(browser.Draft().Title).To(Equal("Edited"))
		})

		It("cancel leaves edit mode without saving", func() {
			Expect(browser.BeginEdit()).To(Succeed())
			browser.CancelEdit()
			Expect(browser.Editing()).To(BeFalse())
			Expect(backend.updates).To(BeEmpty())
		})
	})

	Describe("confirmation flow", func() {
		BeforeEach(func() {
			Expect(browser.Reload(context.Background())).To(Succeed())
			Expect(browser.Select("req-1")).To(Succeed())
		})

		It("staging an action fires nothing", func() {
			Expect(browser.RequestAction(client.ActionDeny, "date clash")).To(Succeed())
			Expect(browser.State()).To(Equal(client.StateConfirming))
			Expect(backend.statuses).To(BeEmpty())
		})

		It("cancel returns to viewing with no side effect", func() {
			Expect(browser.RequestAction(client.ActionDelete, "")).To(Succeed())
			Expect(browser.CancelAction()).To(Succeed())
			Expect(browser.State()).To(Equal(client.StateViewing))
			Expect(backend.deletes).To(BeEmpty())
		})

		It("confirming a deny sends the wire status and returns to browsing", func() {
			Expect(browser.RequestAction(client.ActionDeny, "date clash")).To(Succeed())
			Expect(browser.Confirm(context.Background())).To(Succeed())

			Expect(backend.statuses).To(HaveLen(1))
			Expect(backend.statuses[0]["status"]).To(Equal("rejected"))
			Expect(backend.statuses[0]["feedback"]).To(Equal("date clash"))
			Expect(browser.State()).To(Equal(client.StateBrowsing))
			Expect(browser.Selected()).To(BeNil())
		})

		It("confirming a delete removes and reloads", func() {
			Expect(browser.RequestAction(client.ActionDelete, "")).To(Succeed())
			Expect(browser.Confirm(context.Background())).To(Succeed())
			Expect(backend.deletes).To(Equal([]string{"req-1"}))
			Expect(browser.State()).To(Equal(client.StateBrowsing))
		})

		It("a failed action returns to viewing with the record still open", func() {
			backend.failNext = "not found"
			Expect(browser.RequestAction(client.ActionApprove, "")).To(Succeed())

			err := browser.Confirm(context.Background())
			Expect(client.IsKind(err, client.KindBusinessRule)).To(BeTrue())
			Expect(browser.State()).To(Equal(client.StateViewing))
			Expect(browser.Selected()).NotTo(BeNil())
		})

		It("confirm without a staged action is refused", func() {
			Expect(browser.Confirm(context.Background())).To(MatchError(client.ErrNotConfirming))
		})
	})

	Describe("stale reloads", func() {
		It("a reload overtaken by a newer one is discarded", func() {
			var calls int32
			firstStarted := make(chan struct{})
			releaseFirst := make(chan struct{})

			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				var title string
				if n == 1 {
					close(firstStarted)
					<-releaseFirst
					title = "stale result"
				} else {
					title = "fresh result"
				}
				w.Header().Set("Content-Type", "application/json")
				Expect(json.NewEncoder(w).Encode(map[string]interface{}{
					"items":       []map[string]interface{}{{"id": "req-1", "title": title, "status": "pending"}},
					"total_count": 1,
				})).To(Succeed())
			}))
			DeferCleanup(slow.Close)

			b := client.NewBrowser(client.New(slow.URL))

			done := make(chan error, 1)
			go func() {
				done <- b.Reload(context.Background())
			}()

			<-firstStarted
			Expect(b.Reload(context.Background())).To(Succeed())
			Expect(b.Items()[0].Title).To(Equal("fresh result"))

			close(releaseFirst)
			Expect(<-done).To(Succeed())

			// the slow first response must not overwrite the newer list
			Expect(b.Items()[0].Title).To(Equal("fresh result"))
		})
	})
})
