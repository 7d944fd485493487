package client

import (
	"context"
	"errors"
	"sync"
)

// State is the browser's position in the list/detail flow.
type State string

const (
	// StateBrowsing shows the table and filters.
	StateBrowsing State = "browsing"
	// StateViewing has one record open, possibly in edit sub-mode.
	StateViewing State = "viewing"
	// StateConfirming awaits explicit confirmation of a destructive action.
	StateConfirming State = "confirming"
)

// Action is a mutation that requires confirmation before it fires.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
	ActionDelete  Action = "delete"
)

var (
	ErrNotBrowsing   = errors.New("no record can be selected outside browsing")
	ErrNothingOpen   = errors.New("no record is open")
	ErrNotConfirming = errors.New("no action awaits confirmation")
	ErrUnknownRecord = errors.New("record is not in the current list")
)

// Browser drives the moderation list/detail flow over a Client. Every filter
// change and every completed mutation forces a full list re-fetch; there is
// no incremental patching.
//
// Reloads carry a generation counter: a reload that resolves after a newer
// one has been issued is discarded, so a slow response can never overwrite a
// fresher list.
type Browser struct {
	client *Client

	mu         sync.Mutex
	generation uint64
	state      State
	filters    Filters
	items      []Request
	totalCount int64
	selected   *Request
	editing    bool
	draft      Payload
	pending    Action
	feedback   string
}

func NewBrowser(c *Client) *Browser {
	return &Browser{
		client:  c,
		state:   StateBrowsing,
		filters: Filters{Page: 1},
	}
}

func (b *Browser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Browser) Items() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Browser) TotalCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalCount
}

// Selected returns a copy of the open record, or nil when browsing.
func (b *Browser) Selected() *Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return nil
	}
	copied := *b.selected
	return &copied
}

func (b *Browser) Editing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editing
}

// SetFilters replaces the filters and reloads: a filter change is always a
// new round trip.
func (b *Browser) SetFilters(ctx context.Context, filters Filters) error {
	b.mu.Lock()
	if filters.Page < 1 {
		filters.Page = 1
	}
	b.filters = filters
	b.mu.Unlock()
	return b.Reload(ctx)
}

// Reload re-fetches the list under the current filters. A stale response
// (one overtaken by a newer reload) is dropped without touching state.
func (b *Browser) Reload(ctx context.Context) error {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	filters := b.filters
	b.mu.Unlock()

	result, err := b.client.List(ctx, filters)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		// a newer reload already owns the list
		return nil
	}
	b.items = result.Items
	b.totalCount = result.TotalCount
	return nil
}

// Select opens a record from the current list: browsing → viewing.
func (b *Browser) Select(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateBrowsing {
		return ErrNotBrowsing
	}
	for i := range b.items {
		if b.items[i].ID == id {
			copied := b.items[i]
			b.selected = &copied
			b.state = StateViewing
			b.editing = false
			return nil
		}
	}
	return ErrUnknownRecord
}

// Close returns to browsing, discarding any selection and draft.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateBrowsing
	b.selected = nil
	b.editing = false
	b.pending = ""
}

// BeginEdit enters the edit sub-mode, seeding the draft from the open record.
// Every field except id and status is editable.
func (b *Browser) BeginEdit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateViewing || b.selected == nil {
		return ErrNothingOpen
	}
	b.editing = true
	b.draft = Payload{
		Title:        b.selected.Title,
		Author:       b.selected.Author,
		Organization: b.selected.Organization,
		Email:        b.selected.Email,
		Location:     b.selected.Location,
		OnCampus:     b.selected.OnCampus,
		MaxAttendees: b.selected.MaxAttendees,
		Date:         b.selected.Date,
		StartTime:    b.selected.StartTime,
		EndTime:      b.selected.EndTime,
		Description:  b.selected.Description,
		Departments:  append([]string(nil), b.selected.Departments...),
		PublishAll:   b.selected.PublishAll,
	}
	return nil
}

// Draft returns the in-progress edit buffer.
func (b *Browser) Draft() Payload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

// SetDraft replaces the edit buffer.
func (b *Browser) SetDraft(p Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = p
}

// CancelEdit leaves the edit sub-mode without saving.
func (b *Browser) CancelEdit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editing = false
}

// Save persists the draft. On success the open record re-syncs from the
// server's response and edit mode ends; on failure the draft survives so the
// user may retry.
func (b *Browser) Save(ctx context.Context) error {
	b.mu.Lock()
	if b.state != StateViewing || b.selected == nil || !b.editing {
		b.mu.Unlock()
		return ErrNothingOpen
	}
	id := b.selected.ID
	draft := b.draft
	b.mu.Unlock()

	updated, err := b.client.Update(ctx, id, draft)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.selected = updated
	b.editing = false
	b.mu.Unlock()
	return b.Reload(ctx)
}

// RequestAction stages a destructive action: viewing → confirming. Nothing
// fires until Confirm.
func (b *Browser) RequestAction(action Action, feedback string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateViewing || b.selected == nil {
		return ErrNothingOpen
	}
	b.state = StateConfirming
	b.pending = action
	b.feedback = feedback
	return nil
}

// CancelAction abandons the staged action: confirming → viewing, no side
// effect.
func (b *Browser) CancelAction() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateConfirming {
		return ErrNotConfirming
	}
	b.state = StateViewing
	b.pending = ""
	b.feedback = ""
	return nil
}

// Confirm fires the staged action. On success the list reloads and the flow
// returns to browsing; on failure the flow returns to viewing with the
// record still open so the user may retry.
func (b *Browser) Confirm(ctx context.Context) error {
	b.mu.Lock()
	if b.state != StateConfirming || b.selected == nil {
		b.mu.Unlock()
		return ErrNotConfirming
	}
	id := b.selected.ID
	action := b.pending
	feedback := b.feedback
	b.mu.Unlock()

	var err error
	switch action {
	case ActionApprove:
		_, err = b.client.UpdateStatus(ctx, id, StatusApproved, feedback)
	case ActionDeny:
		_, err = b.client.UpdateStatus(ctx, id, StatusDenied, feedback)
	case ActionDelete:
		err = b.client.Remove(ctx, id)
	default:
		err = ErrNotConfirming
	}

	b.mu.Lock()
	b.pending = ""
	b.feedback = ""
	if err != nil {
		b.state = StateViewing
		b.mu.Unlock()
		return err
	}
	b.state = StateBrowsing
	b.selected = nil
	b.editing = false
	b.mu.Unlock()

	return b.Reload(ctx)
}
