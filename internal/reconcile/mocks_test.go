package reconcile

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	phonebookdomain "github.com/ozmsg/gateway/internal/phonebook_service/domain"
	"github.com/ozmsg/gateway/internal/provider"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher serves fixed pages and records every request made.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    [][]provider.Message
	requests []provider.FetchRequest
	// errs[i] is returned for call i instead of a page when non-nil.
	errs []error
}

func (f *fakeFetcher) GetMessages(_ context.Context, req provider.FetchRequest) ([]provider.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.requests)
	f.requests = append(f.requests, req)

	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.pages) {
		return f.pages[call], nil
	}
	return nil, nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// spySender records sends and optionally fails them.
type spySender struct {
	mu    sync.Mutex
	sent  []provider.SendRequest
	fail  error
}

func (s *spySender) Send(_ context.Context, req provider.SendRequest) (*provider.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.sent = append(s.sent, req)
	return &provider.SendResult{MessageID: "sent-" + uuid.NewString(), Status: "queued"}, nil
}

func (s *spySender) Name() string { return "spy" }

func (s *spySender) sends() []provider.SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.SendRequest, len(s.sent))
	copy(out, s.sent)
	return out
}

// memInboxRepo is an in-memory InboxRepository good enough for merge and
// pipeline tests; Create enforces id uniqueness the way the real table does.
type memInboxRepo struct {
	mu   sync.Mutex
	rows map[string]*inboxdomain.InboxMessage
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{rows: make(map[string]*inboxdomain.InboxMessage)}
}

func (r *memInboxRepo) Create(_ context.Context, msg *inboxdomain.InboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[msg.ID]; ok {
		return inboxdomain.ErrDuplicateEntry
	}
	clone := *msg
	r.rows[msg.ID] = &clone
	return nil
}

func (r *memInboxRepo) GetByID(_ context.Context, id string, userID uuid.UUID) (*inboxdomain.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok && m.UserID == userID {
		clone := *m
		return &clone, nil
	}
	return nil, inboxdomain.ErrNotFound
}

func (r *memInboxRepo) ListByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]*inboxdomain.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inboxdomain.InboxMessage
	for _, m := range r.rows {
		if m.UserID == userID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memInboxRepo) ListIDsByUserID(_ context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]struct{})
	for id, m := range r.rows {
		if m.UserID == userID {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (r *memInboxRepo) SetRead(_ context.Context, id string, userID uuid.UUID, read bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok && m.UserID == userID {
		m.Read = read
		return nil
	}
	return inboxdomain.ErrNotFound
}

func (r *memInboxRepo) SetFolder(_ context.Context, id string, userID uuid.UUID, folder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok && m.UserID == userID {
		m.Folder = folder
		return nil
	}
	return inboxdomain.ErrNotFound
}

func (r *memInboxRepo) Delete(_ context.Context, id string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok && m.UserID == userID {
		delete(r.rows, id)
		return nil
	}
	return inboxdomain.ErrNotFound
}

func (r *memInboxRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// --- testify mocks for the repository interfaces used via expectations ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdomain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userdomain.User), args.Error(1)
}

func (m *MockUserRepo) FindByMobileTail(ctx context.Context, tail string) ([]*userdomain.User, error) {
	args := m.Called(ctx, tail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userdomain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, offset, limit int) ([]*userdomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userdomain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *userdomain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) DebitCredits(ctx context.Context, id uuid.UUID, amount int) error {
	return m.Called(ctx, id, amount).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) Create(ctx context.Context, c *phonebookdomain.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContactRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*phonebookdomain.Contact, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phonebookdomain.Contact), args.Error(1)
}

func (m *MockContactRepo) ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*phonebookdomain.Contact, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*phonebookdomain.Contact), args.Error(1)
}

func (m *MockContactRepo) FindByNumberTail(ctx context.Context, tail string) ([]*phonebookdomain.Contact, error) {
	args := m.Called(ctx, tail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*phonebookdomain.Contact), args.Error(1)
}

func (m *MockContactRepo) Update(ctx context.Context, c *phonebookdomain.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockContactRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) Create(ctx context.Context, r *inboxdomain.Rule) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRuleRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*inboxdomain.Rule, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inboxdomain.Rule), args.Error(1)
}

func (m *MockRuleRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*inboxdomain.Rule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inboxdomain.Rule), args.Error(1)
}

func (m *MockRuleRepo) ListEnabledByUserID(ctx context.Context, userID uuid.UUID) ([]*inboxdomain.Rule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inboxdomain.Rule), args.Error(1)
}

func (m *MockRuleRepo) Update(ctx context.Context, r *inboxdomain.Rule) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRuleRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}
