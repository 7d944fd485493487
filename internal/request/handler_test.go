package request_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/request"
)

// Mock service for handler tests
type mockRequestService struct {
	record      *request.PublicationRequest
	listItems   []*request.PublicationRequest
	listTotal   int64
	err         error
	lastStatus  request.UpdateStatusDTO
	lastFilters request.ListFilters
}

func (m *mockRequestService) Create(_ context.Context, _ string, _ request.CreateRequestDTO, _ []*request.Attachment) (*request.PublicationRequest, error) {
	return m.record, m.err
}

func (m *mockRequestService) List(_ context.Context, filters request.ListFilters) ([]*request.PublicationRequest, int64, error) {
	m.lastFilters = filters
	return m.listItems, m.listTotal, m.err
}

func (m *mockRequestService) ChangeStatus(_ context.Context, dto request.UpdateStatusDTO) (*request.PublicationRequest, error) {
	m.lastStatus = dto
	return m.record, m.err
}

func (m *mockRequestService) Update(_ context.Context, _ request.UpdateRequestDTO) (*request.PublicationRequest, error) {
	return m.record, m.err
}

func (m *mockRequestService) Delete(_ context.Context, _ request.DeleteRequestDTO) error {
	return m.err
}

func (m *mockRequestService) Attachment(_ context.Context, _ string) (*request.Attachment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &request.Attachment{
		Filename:  "poster.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4,
		Content:   []byte("%PDF"),
	}, nil
}

var _ = Describe("RequestHandler", func() {
	var (
		handler *request.Handler
		service *mockRequestService
	)

	BeforeEach(func() {
		service = &mockRequestService{
			record: &request.PublicationRequest{
				ID:     "req-1",
				Title:  "Spring Hackathon",
				Status: request.StatusApproved,
			},
		}
		handler = request.NewHandler(service)
	})

	decode := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("ChangeStatus", func() {
		It("flattens the record into the response next to the success flag", func() {
			r := httptest.NewRequest("POST", "/api/req/pubreqchangestatus",
				strings.NewReader(`{"id":"req-1","status":"approved"}`))
			w := httptest.NewRecorder()

			handler.ChangeStatus(w, r)

			Expect(w.Code).To(Equal(200))
			body := decode(w)
			Expect(body["success"]).To(BeTrue())
			Expect(body["id"]).To(Equal("req-1"))
			Expect(body["status"]).To(Equal("approved"))
		})

		It("answers a missing record with HTTP 200 and a business-rule body", func() {
			service.err = internal.ErrRequestNotFound
			r := httptest.NewRequest("POST", "/api/req/pubreqchangestatus",
				strings.NewReader(`{"id":"req-404","status":"approved"}`))
			w := httptest.NewRecorder()

			handler.ChangeStatus(w, r)

			Expect(w.Code).To(Equal(200))
			body := decode(w)
			Expect(body["success"]).To(BeFalse())
			Expect(body["message"]).To(Equal("not found"))
		})

		It("rejects a malformed body with 400", func() {
			r := httptest.NewRequest("POST", "/api/req/pubreqchangestatus", strings.NewReader("{nope"))
			w := httptest.NewRecorder()

			handler.ChangeStatus(w, r)
			Expect(w.Code).To(Equal(400))
		})
	})

	Describe("Delete", func() {
		It("answers a missing record with HTTP 200 and a business-rule body", func() {
			service.err = internal.ErrRequestNotFound
			r := httptest.NewRequest("POST", "/api/req/pubreqdelete", strings.NewReader(`{"id":"req-404"}`))
			w := httptest.NewRecorder()

			handler.Delete(w, r)

			Expect(w.Code).To(Equal(200))
			body := decode(w)
			Expect(body["success"]).To(BeFalse())
			Expect(body["message"]).To(Equal("not found"))
		})

		It("confirms a successful delete", func() {
			r := httptest.NewRequest("POST", "/api/req/pubreqdelete", strings.NewReader(`{"id":"req-1"}`))
			w := httptest.NewRecorder()

			handler.Delete(w, r)

			Expect(w.Code).To(Equal(200))
			Expect(decode(w)["success"]).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("maps query parameters onto the filters and wraps the result", func() {
			service.listItems = []*request.PublicationRequest{service.record}
			service.listTotal = 41

			r := httptest.NewRequest("GET", "/api/req/pubreqfetch?dept=computer-science&status=pending&q=hack&page=2&page_size=10", nil)
			w := httptest.NewRecorder()

			handler.List(w, r)

			Expect(w.Code).To(Equal(200))
			Expect(service.lastFilters.Department).To(Equal("computer-science"))
			Expect(service.lastFilters.Status).To(Equal("pending"))
			Expect(service.lastFilters.Query).To(Equal("hack"))
			Expect(service.lastFilters.Page).To(Equal(2))
			Expect(service.lastFilters.PageSize).To(Equal(10))

			body := decode(w)
			Expect(body["total_count"]).To(BeNumerically("==", 41))
			Expect(body["items"]).To(HaveLen(1))
		})

		It("maps a validation failure onto a 4xx error body", func() {
			service.err = internal.NewValidationError("unknown status filter", internal.ErrCodeInvalidStatus)

			r := httptest.NewRequest("GET", "/api/req/pubreqfetch?status=archived", nil)
			w := httptest.NewRecorder()

			handler.List(w, r)
			Expect(w.Code).To(BeNumerically(">=", 400))
			Expect(w.Code).To(BeNumerically("<", 500))
		})
	})

	Describe("DownloadAttachment", func() {
		It("serves the blob with its stored content type and filename", func() {
			r := httptest.NewRequest("GET", "/api/req/attachments/att-1", nil)
			w := httptest.NewRecorder()

			handler.DownloadAttachment(w, r)

			Expect(w.Code).To(Equal(200))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/pdf"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("poster.pdf"))
			Expect(w.Body.Bytes()).To(Equal([]byte("%PDF")))
		})
	})
})
