// Package client is the typed Go client for the publication portal API. It
// owns the "denied"⇄"rejected" status naming translation: callers always see
// the UI names, the wire always carries the stored names.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"

	wireStatusRejected = "rejected"
)

// UIToAPIStatus translates the UI status name onto the wire form.
func UIToAPIStatus(s string) string {
	if s == StatusDenied {
		return wireStatusRejected
	}
	return s
}

// APIToUIStatus translates the wire status name onto the UI form.
func APIToUIStatus(s string) string {
	if s == wireStatusRejected {
		return StatusDenied
	}
	return s
}

// Request is the wire record with its status already translated to the UI
// name.
type Request struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Author       string           `json:"author"`
	Organization string           `json:"organization"`
	Email        string           `json:"email"`
	Location     string           `json:"location"`
	OnCampus     bool             `json:"on_campus"`
	MaxAttendees *int             `json:"max_attendees"`
	Date         string           `json:"date"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	StartISO     string           `json:"start_iso,omitempty"`
	EndISO       string           `json:"end_iso,omitempty"`
	Description  string           `json:"description"`
	Departments  []string         `json:"departments"`
	PublishAll   bool             `json:"publish_all"`
	Attachments  []AttachmentMeta `json:"attachments"`
	Status       string           `json:"status"`
	Feedback     string           `json:"feedback"`
	IsVisible    bool             `json:"is_visible"`
}

type AttachmentMeta struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size"`
}

// Payload is the writable field set of a request.
type Payload struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Organization string   `json:"organization"`
	Email        string   `json:"email"`
	Location     string   `json:"location"`
	OnCampus     bool     `json:"on_campus"`
	MaxAttendees *int     `json:"max_attendees"`
	Date         string   `json:"date"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Description  string   `json:"description"`
	Departments  []string `json:"departments"`
	PublishAll   bool     `json:"publish_all"`
}

// Attachment is a file to upload with a submission.
type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

// CalendarEvent is a published calendar entry.
type CalendarEvent struct {
	ID              string   `json:"id"`
	SourceRequestID string   `json:"source_request_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Departments     []string `json:"departments"`
	PublishAll      bool     `json:"publish_all"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
}

// Filters narrows a List call. Department and Status treat "" and "all" as no
// filter; Status uses UI names.
type Filters struct {
	Department string
	Status     string
	SearchText string
	Page       int
	PageSize   int
}

type ListResult struct {
	Items      []Request
	TotalCount int64
}

// Client issues calls against the portal API. It carries the session cookie
// between calls; there is no client-side caching or retry.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches a filtered page of publication requests.
func (c *Client) List(ctx context.Context, filters Filters) (*ListResult, error) {
	q := url.Values{}
	if filters.Department != "" && !strings.EqualFold(filters.Department, "all") {
		q.Set("dept", filters.Department)
	}
	if filters.Status != "" && !strings.EqualFold(filters.Status, "all") {
		q.Set("status", UIToAPIStatus(filters.Status))
	}
	if filters.SearchText != "" {
		q.Set("q", filters.SearchText)
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if filters.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filters.PageSize))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/req/pubreqfetch?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	rawItems, ok := body["items"]
	if !ok {
		return nil, malformedError("response is missing the items array")
	}
	rawList, ok := rawItems.([]interface{})
	if !ok {
		return nil, malformedError("items is not an array")
	}

	items, err := decodeRequests(rawList)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items}
	if total, ok := body["total_count"].(float64); ok {
		result.TotalCount = int64(total)
	}
	return result, nil
}

// Create submits a new request. With attachments the payload goes as
// multipart with every scalar serialized as a canonical string; without, as a
// plain JSON body.
func (c *Client) Create(ctx context.Context, payload Payload, attachments []Attachment) (*Request, error) {
	if len(attachments) == 0 {
		raw, _ := json.Marshal(payloadBody(payload))
		body, err := c.do(ctx, http.MethodPost, "/api/req/pubreqtest", "application/json", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return recordFromBody(body)
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for key, value := range payloadStrings(payload) {
		if err := mw.WriteField(key, value); err != nil {
			return nil, &Error{Kind: KindHTTP, Message: err.Error()}
		}
	}
	for _, a := range attachments {
		part, err := mw.CreateFormFile("attachments", a.Filename)
		if err != nil {
			return nil, &Error{Kind: KindHTTP, Message: err.Error()}
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, &Error{Kind: KindHTTP, Message: err.Error()}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindHTTP, Message: err.Error()}
	}

	body, err := c.do(ctx, http.MethodPost, "/api/req/pubreqtest", mw.FormDataContentType(), buf)
	if err != nil {
		return nil, err
	}
	return recordFromBody(body)
}

// UpdateStatus runs a moderation transition and returns the updated record.
// Status uses UI names.
func (c *Client) UpdateStatus(ctx context.Context, id string, status, feedback string) (*Request, error) {
	raw, _ := json.Marshal(map[string]string{
		"id":       id,
		"status":   UIToAPIStatus(status),
		"feedback": feedback,
	})
	body, err := c.do(ctx, http.MethodPost, "/api/req/pubreqchangestatus", "application/json", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return recordFromBody(body)
}

// Update saves a staff edit and returns the server's version of the record.
func (c *Client) Update(ctx context.Context, id string, payload Payload) (*Request, error) {
	body := payloadBody(payload)
	body["id"] = id
	raw, _ := json.Marshal(body)
	resp, err := c.do(ctx, http.MethodPost, "/api/req/pubrequpdate", "application/json", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return recordFromBody(resp)
}

// Remove deletes a request.
func (c *Client) Remove(ctx context.Context, id string) error {
	raw, _ := json.Marshal(map[string]string{"id": id})
	_, err := c.do(ctx, http.MethodPost, "/api/req/pubreqdelete", "application/json", bytes.NewReader(raw))
	return err
}

// Calendar fetches the published events in a local date range.
func (c *Client) Calendar(ctx context.Context, start, end string) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)

	body, err := c.do(ctx, http.MethodGet, "/api/req/calendar?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	rawItems, ok := body["items"]
	if !ok {
		return nil, malformedError("response is missing the items array")
	}
	raw, err := json.Marshal(rawItems)
	if err != nil {
		return nil, malformedError("items is not an array")
	}
	var items []CalendarEvent
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformedError("items is not an array")
	}
	return items, nil
}

// do issues the call and applies the shared failure taxonomy.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindHTTP, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindHTTP, Message: err.Error()}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindHTTP, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusForbidden {
		message := "forbidden"
		var parsed map[string]interface{}
		if json.Unmarshal(rawBody, &parsed) == nil {
			if m, ok := parsed["message"].(string); ok {
				message = m
			}
		}
		return nil, forbiddenError(message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return nil, nonJSONError(string(rawBody))
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, nonJSONError(string(rawBody))
	}

	if success, ok := parsed["success"].(bool); ok && !success {
		message := "request failed"
		if m, ok := parsed["message"].(string); ok && m != "" {
			message = m
		} else if m, ok := parsed["error"].(string); ok && m != "" {
			message = m
		}
		return nil, businessRuleError(message)
	}

	return parsed, nil
}

func decodeRequests(rawList []interface{}) ([]Request, error) {
	raw, err := json.Marshal(rawList)
	if err != nil {
		return nil, malformedError("items is not an array")
	}
	var items []Request
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformedError("items do not match the record contract")
	}
	for i := range items {
		items[i].Status = APIToUIStatus(items[i].Status)
	}
	return items, nil
}

func recordFromBody(body map[string]interface{}) (*Request, error) {
	delete(body, "success")
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, malformedError("response does not match the record contract")
	}
	var record Request
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, malformedError("response does not match the record contract")
	}
	record.Status = APIToUIStatus(record.Status)
	return &record, nil
}

func payloadBody(p Payload) map[string]interface{} {
	departments := p.Departments
	if departments == nil {
		departments = []string{}
	}
	body := map[string]interface{}{
		"title":        p.Title,
		"author":       p.Author,
		"organization": p.Organization,
		"email":        p.Email,
		"location":     p.Location,
		"on_campus":    p.OnCampus,
		"date":         p.Date,
		"start_time":   p.StartTime,
		"end_time":     p.EndTime,
		"description":  p.Description,
		"departments":  departments,
		"publish_all":  p.PublishAll,
	}
	if p.MaxAttendees != nil {
		body["max_attendees"] = *p.MaxAttendees
	}
	return body
}

// payloadStrings is the multipart rendering: booleans as "true"/"false",
// integers as decimal strings, departments as a JSON-encoded array string.
func payloadStrings(p Payload) map[string]string {
	departments := p.Departments
	if departments == nil {
		departments = []string{}
	}
	departmentsJSON, _ := json.Marshal(departments)

	fields := map[string]string{
		"title":        p.Title,
		"author":       p.Author,
		"organization": p.Organization,
		"email":        p.Email,
		"location":     p.Location,
		"on_campus":    strconv.FormatBool(p.OnCampus),
		"date":         p.Date,
		"start_time":   p.StartTime,
		"end_time":     p.EndTime,
		"description":  p.Description,
		"departments":  string(departmentsJSON),
		"publish_all":  strconv.FormatBool(p.PublishAll),
	}
	if p.MaxAttendees != nil {
		fields["max_attendees"] = fmt.Sprint(*p.MaxAttendees)
	}
	return fields
}
