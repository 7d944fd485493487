package event_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/cache"
	"github.com/campuspub/publication-portal/internal/core/events"
	"github.com/campuspub/publication-portal/internal/event"
	"github.com/campuspub/publication-portal/internal/request"
)

func TestEvent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Event Module Suite")
}

// Mock repository for testing
type mockEventRepository struct {
	bySource   map[string]*event.Event
	rangeCalls int
	nextID     int
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{bySource: make(map[string]*event.Event), nextID: 1}
}

func (m *mockEventRepository) Create(_ context.Context, e *event.Event) error {
	if _, exists := m.bySource[e.SourceRequestID]; exists {
		return errors.New("unique constraint violation")
	}
	e.ID = "evt-" + strconv.Itoa(m.nextID)
	m.nextID++
	m.bySource[e.SourceRequestID] = e
	return nil
}

func (m *mockEventRepository) GetBySourceRequest(_ context.Context, requestID string) (*event.Event, error) {
	if e, ok := m.bySource[requestID]; ok {
		return e, nil
	}
	return nil, internal.ErrEventNotFound
}

func (m *mockEventRepository) DeleteBySourceRequest(_ context.Context, requestID string) error {
	if _, ok := m.bySource[requestID]; !ok {
		return internal.ErrEventNotFound
	}
	delete(m.bySource, requestID)
	return nil
}

func (m *mockEventRepository) Range(_ context.Context, from, to time.Time) ([]*event.Event, error) {
	m.rangeCalls++
	var out []*event.Event
	for _, e := range m.bySource {
		if e.StartAt == nil {
			continue
		}
		end := e.StartAt
		if e.EndAt != nil {
			end = e.EndAt
		}
		if e.StartAt.Before(to) && !end.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepository) List(_ context.Context) ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range m.bySource {
		out = append(out, e)
	}
	return out, nil
}

// Mock request source for testing
type mockRequestSource struct {
	requests map[string]*request.PublicationRequest
}

func (m *mockRequestSource) Get(_ context.Context, id string) (*request.PublicationRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, internal.ErrRequestNotFound
}

var _ = Describe("EventService", func() {
	var (
		service *event.Service
		repo    *mockEventRepository
		source  *mockRequestSource
		cacher  cache.Cacher
		logger  *slog.Logger
	)

	approvedRequest := func(id string) *request.PublicationRequest {
		return &request.PublicationRequest{
			ID:          id,
			Title:       "Career Fair 2026",
			Location:    "Main Hall",
			Status:      request.StatusApproved,
			IsVisible:   true,
			PublishAll:  true,
			Departments: []string{},
			StartISO:    "2026-09-12T16:00:00Z",
			EndISO:      "2026-09-12T19:00:00Z",
		}
	}

	BeforeEach(func() {
		repo = newMockEventRepository()
		source = &mockRequestSource{requests: make(map[string]*request.PublicationRequest)}
		cacher = cache.NewMemoryCache(time.Minute)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = event.NewService(repo, source, cacher, time.Minute, logger)
	})

	AfterEach(func() {
		Expect(cacher.Close()).To(Succeed())
	})

	Describe("CreateFromRequest", func() {
		It("projects an approved request onto the calendar", func() {
			source.requests["req-1"] = approvedRequest("req-1")

			e, err := service.CreateFromRequest(context.Background(), "req-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.SourceRequestID).To(Equal("req-1"))
			Expect(e.Title).To(Equal("Career Fair 2026"))
			Expect(e.StartAt).NotTo(BeNil())
			Expect(e.StartAt.UTC().Hour()).To(Equal(16))
		})

		It("publishing twice returns the existing event", func() {
			source.requests["req-1"] = approvedRequest("req-1")

			first, err := service.CreateFromRequest(context.Background(), "req-1")
			Expect(err).NotTo(HaveOccurred())
			second, err := service.CreateFromRequest(context.Background(), "req-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(repo.bySource).To(HaveLen(1))
		})

		It("refuses a request that is not approved", func() {
			pending := approvedRequest("req-2")
			pending.Status = request.StatusPending
			pending.IsVisible = false
			source.requests["req-2"] = pending

			_, err := service.CreateFromRequest(context.Background(), "req-2")
			Expect(errors.Is(err, internal.ErrRequestNotApproved)).To(BeTrue())
		})

		It("propagates not found for a missing source request", func() {
			_, err := service.CreateFromRequest(context.Background(), "req-404")
			Expect(errors.Is(err, internal.ErrRequestNotFound)).To(BeTrue())
		})
	})

	Describe("Range", func() {
		BeforeEach(func() {
			source.requests["req-1"] = approvedRequest("req-1")
			_, err := service.CreateFromRequest(context.Background(), "req-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns events overlapping the date range", func() {
			items, err := service.Range(context.Background(), "2026-09-10", "2026-09-14")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("excludes events outside the range", func() {
			items, err := service.Range(context.Background(), "2026-10-01", "2026-10-31")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("includes an event on the inclusive end date", func() {
			items, err := service.Range(context.Background(), "2026-09-01", "2026-09-12")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("serves repeated reads from the cache", func() {
			_, err := service.Range(context.Background(), "2026-09-10", "2026-09-14")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Range(context.Background(), "2026-09-10", "2026-09-14")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.rangeCalls).To(Equal(1))
		})

		It("invalidates cached ranges after an unpublish", func() {
			_, err := service.Range(context.Background(), "2026-09-10", "2026-09-14")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteBySource(context.Background(), "req-1")).To(Succeed())

			items, err := service.Range(context.Background(), "2026-09-10", "2026-09-14")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
			Expect(repo.rangeCalls).To(Equal(2))
		})

		It("rejects an end date before the start date", func() {
			_, err := service.Range(context.Background(), "2026-09-14", "2026-09-10")
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEndBeforeStart))
		})

		It("rejects malformed dates", func() {
			_, err := service.Range(context.Background(), "soon", "later")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SubscribeBus", func() {
		It("unpublishes the event when its source request is deleted", func() {
			source.requests["req-1"] = approvedRequest("req-1")
			_, err := service.CreateFromRequest(context.Background(), "req-1")
			Expect(err).NotTo(HaveOccurred())

			bus := events.NewEventBus(logger)
			service.SubscribeBus(bus)
			bus.Publish(context.Background(), events.NewRequestEvent(events.RequestDeleted, "req-1", "Career Fair 2026", "", ""))

			_, err = repo.GetBySourceRequest(context.Background(), "req-1")
			Expect(errors.Is(err, internal.ErrEventNotFound)).To(BeTrue())
		})
	})
})
