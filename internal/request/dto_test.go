package request_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/internal/request"
)

var _ = Describe("ParseCreateRequest", func() {
	Context("with a JSON body", func() {
		It("decodes natively typed fields", func() {
			body := `{
				"title": "Spring Hackathon",
				"author": "Jonas Berg",
				"email": "jonas@campus.example",
				"date": "2026-09-12",
				"on_campus": true,
				"max_attendees": 120,
				"departments": ["computer-science", "mathematics"]
			}`
			r := httptest.NewRequest("POST", "/api/req/pubreqtest", strings.NewReader(body))
			r.Header.Set("Content-Type", "application/json")

			dto, files, err := request.ParseCreateRequest(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(BeEmpty())
			Expect(dto.OnCampus).To(BeTrue())
			Expect(*dto.MaxAttendees).To(Equal(120))
			Expect(dto.Departments).To(Equal([]string{"computer-science", "mathematics"}))
		})

		It("rejects malformed JSON", func() {
			r := httptest.NewRequest("POST", "/api/req/pubreqtest", strings.NewReader("{nope"))
			r.Header.Set("Content-Type", "application/json")
			_, _, err := request.ParseCreateRequest(r)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a multipart form", func() {
		buildForm := func(fields map[string]string, filenames ...string) (*bytes.Buffer, string) {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			for k, v := range fields {
				Expect(w.WriteField(k, v)).To(Succeed())
			}
			for _, name := range filenames {
				part, err := w.CreateFormFile("attachments", name)
				Expect(err).NotTo(HaveOccurred())
				_, err = part.Write([]byte("file content"))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(w.Close()).To(Succeed())
			return &buf, w.FormDataContentType()
		}

		It("decodes canonical string scalars and the departments JSON array", func() {
			buf, contentType := buildForm(map[string]string{
				"title":         "Spring Hackathon",
				"author":        "Jonas Berg",
				"email":         "jonas@campus.example",
				"date":          "2026-09-12",
				"on_campus":     "true",
				"publish_all":   "false",
				"max_attendees": "120",
				"departments":   `["computer-science","mathematics"]`,
			}, "poster.pdf", "schedule.png")

			r := httptest.NewRequest("POST", "/api/req/pubreqtest", buf)
			r.Header.Set("Content-Type", contentType)

			dto, files, err := request.ParseCreateRequest(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(dto.OnCampus).To(BeTrue())
			Expect(dto.PublishAll).To(BeFalse())
			Expect(*dto.MaxAttendees).To(Equal(120))
			Expect(dto.Departments).To(HaveLen(2))
			Expect(files).To(HaveLen(2))
			Expect(files[0].Filename).To(Equal("poster.pdf"))
		})

		It("rejects a non-JSON departments field", func() {
			buf, contentType := buildForm(map[string]string{
				"title":       "Spring Hackathon",
				"departments": "computer-science,mathematics",
			})
			r := httptest.NewRequest("POST", "/api/req/pubreqtest", buf)
			r.Header.Set("Content-Type", contentType)

			_, _, err := request.ParseCreateRequest(r)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a non-boolean on_campus field", func() {
			buf, contentType := buildForm(map[string]string{
				"title":     "Spring Hackathon",
				"on_campus": "yes please",
			})
			r := httptest.NewRequest("POST", "/api/req/pubreqtest", buf)
			r.Header.Set("Content-Type", contentType)

			_, _, err := request.ParseCreateRequest(r)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ListFilters", func() {
	It("defaults the page and clamps the page size", func() {
		f := request.ListFilters{Page: -3, PageSize: 10000}.Normalize()
		Expect(f.Page).To(Equal(1))
		Expect(f.PageSize).To(Equal(200))
	})

	It("defaults the page size when omitted", func() {
		f := request.ListFilters{}.Normalize()
		Expect(f.PageSize).To(Equal(50))
	})

	It("treats all as no filter for department and status", func() {
		f := request.ListFilters{Department: "All", Status: "ALL"}.Normalize()
		Expect(f.Department).To(BeEmpty())
		Expect(f.Status).To(BeEmpty())
	})

	It("folds the denied alias into rejected", func() {
		f := request.ListFilters{Status: "Denied"}.Normalize()
		Expect(f.Status).To(Equal(request.StatusRejected))
	})
})

var _ = Describe("Status helpers", func() {
	It("normalizes only the denied alias", func() {
		Expect(request.NormalizeStatus("denied")).To(Equal(request.StatusRejected))
		Expect(request.NormalizeStatus("approved")).To(Equal(request.StatusApproved))
		Expect(request.NormalizeStatus("archived")).To(Equal("archived"))
	})

	It("accepts only stored status values", func() {
		Expect(request.ValidStatus("pending")).To(BeTrue())
		Expect(request.ValidStatus("denied")).To(BeFalse())
	})
})
