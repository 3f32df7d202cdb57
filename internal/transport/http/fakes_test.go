package http

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	inboxdomain "github.com/ozmsg/gateway/internal/inbox_service/domain"
	outboxdomain "github.com/ozmsg/gateway/internal/outbox_service/domain"
	phonebookdomain "github.com/ozmsg/gateway/internal/phonebook_service/domain"
	"github.com/ozmsg/gateway/internal/phonenumber"
	"github.com/ozmsg/gateway/internal/provider"
	userdomain "github.com/ozmsg/gateway/internal/user_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNorm = phonenumber.New(phonenumber.Australia)

// memUserRepo is an in-memory UserRepository backing handler tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*userdomain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return userdomain.ErrDuplicateEntry
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, userdomain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userdomain.ErrNotFound
}

func (r *memUserRepo) FindByMobileTail(_ context.Context, tail string) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userdomain.User
	for _, u := range r.users {
		if u.PersonalMobile != "" && testNorm.TailKey(u.PersonalMobile) == tail {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*userdomain.User
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memUserRepo) Update(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return userdomain.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) DebitCredits(_ context.Context, id uuid.UUID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userdomain.ErrNotFound
	}
	if u.Credits < amount {
		return userdomain.ErrInsufficientCredits
	}
	u.Credits -= amount
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return userdomain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// memContactRepo is an in-memory ContactRepository.
type memContactRepo struct {
	mu       sync.Mutex
	contacts map[uuid.UUID]*phonebookdomain.Contact
}

func newMemContactRepo() *memContactRepo {
	return &memContactRepo{contacts: make(map[uuid.UUID]*phonebookdomain.Contact)}
}

func (r *memContactRepo) Create(_ context.Context, c *phonebookdomain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *memContactRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*phonebookdomain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return nil, phonebookdomain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memContactRepo) ListByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]*phonebookdomain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*phonebookdomain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			cp := *c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memContactRepo) FindByNumberTail(_ context.Context, tail string) ([]*phonebookdomain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*phonebookdomain.Contact
	for _, c := range r.contacts {
		if testNorm.TailKey(c.PhoneNumber) == tail {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memContactRepo) Update(_ context.Context, c *phonebookdomain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[c.ID]; !ok {
		return phonebookdomain.ErrNotFound
	}
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *memContactRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return phonebookdomain.ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}

// memInboxRepo is an in-memory InboxRepository; Create enforces id
// uniqueness the way the real table does.
type memInboxRepo struct {
	mu   sync.Mutex
	msgs map[string]*inboxdomain.InboxMessage
}

func newMemInboxRepo() *memInboxRepo {
	return &memInboxRepo{msgs: make(map[string]*inboxdomain.InboxMessage)}
}

func (r *memInboxRepo) Create(_ context.Context, m *inboxdomain.InboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.msgs[m.ID]; ok {
		return inboxdomain.ErrDuplicateEntry
	}
	cp := *m
	r.msgs[m.ID] = &cp
	return nil
}

func (r *memInboxRepo) GetByID(_ context.Context, id string, userID uuid.UUID) (*inboxdomain.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.UserID != userID {
		return nil, inboxdomain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memInboxRepo) ListByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]*inboxdomain.InboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*inboxdomain.InboxMessage
	for _, m := range r.msgs {
		if m.UserID == userID {
			cp := *m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ReceivedAt.After(all[j].ReceivedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memInboxRepo) ListIDsByUserID(_ context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{})
	for id, m := range r.msgs {
		if m.UserID == userID {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (r *memInboxRepo) SetRead(_ context.Context, id string, userID uuid.UUID, read bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.UserID != userID {
		return inboxdomain.ErrNotFound
	}
	m.Read = read
	return nil
}

func (r *memInboxRepo) SetFolder(_ context.Context, id string, userID uuid.UUID, folder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.UserID != userID {
		return inboxdomain.ErrNotFound
	}
	m.Folder = folder
	return nil
}

func (r *memInboxRepo) Delete(_ context.Context, id string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.UserID != userID {
		return inboxdomain.ErrNotFound
	}
	delete(r.msgs, id)
	return nil
}

// memRuleRepo is an in-memory RuleRepository preserving creation order.
type memRuleRepo struct {
	mu    sync.Mutex
	rules []*inboxdomain.Rule
}

func newMemRuleRepo() *memRuleRepo { return &memRuleRepo{} }

func (r *memRuleRepo) Create(_ context.Context, rule *inboxdomain.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	r.rules = append(r.rules, &cp)
	return nil
}

func (r *memRuleRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*inboxdomain.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id && rule.UserID == userID {
			cp := *rule
			return &cp, nil
		}
	}
	return nil, inboxdomain.ErrNotFound
}

func (r *memRuleRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]*inboxdomain.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inboxdomain.Rule
	for _, rule := range r.rules {
		if rule.UserID == userID {
			cp := *rule
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRuleRepo) ListEnabledByUserID(_ context.Context, userID uuid.UUID) ([]*inboxdomain.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inboxdomain.Rule
	for _, rule := range r.rules {
		if rule.UserID == userID && rule.Enabled {
			cp := *rule
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRuleRepo) Update(_ context.Context, rule *inboxdomain.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rules {
		if existing.ID == rule.ID {
			cp := *rule
			r.rules[i] = &cp
			return nil
		}
	}
	return inboxdomain.ErrNotFound
}

func (r *memRuleRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rules {
		if existing.ID == id && existing.UserID == userID {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return inboxdomain.ErrNotFound
}

// memMessageRepo is an in-memory outbound MessageRepository.
type memMessageRepo struct {
	mu   sync.Mutex
	msgs map[uuid.UUID]*outboxdomain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{msgs: make(map[uuid.UUID]*outboxdomain.Message)}
}

func (r *memMessageRepo) Create(_ context.Context, m *outboxdomain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.msgs[m.ID] = &cp
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*outboxdomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok || m.UserID != userID {
		return nil, outboxdomain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMessageRepo) ListByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]*outboxdomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*outboxdomain.Message
	for _, m := range r.msgs {
		if m.UserID == userID {
			cp := *m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memMessageRepo) UpdateStatus(_ context.Context, id uuid.UUID, status outboxdomain.MessageStatus, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return outboxdomain.ErrNotFound
	}
	m.Status = status
	if providerID != "" {
		m.ProviderID = providerID
	}
	return nil
}

// fakeProvider is a provider.Client recording sends and serving queued
// inbound pages.
type fakeProvider struct {
	mu      sync.Mutex
	inbound []provider.Message
	sent    []provider.SendRequest
	failAll bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(_ context.Context, req provider.SendRequest) (*provider.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, context.DeadlineExceeded
	}
	f.sent = append(f.sent, req)
	return &provider.SendResult{MessageID: "prov-" + uuid.NewString(), Status: "queued"}, nil
}

func (f *fakeProvider) GetMessages(_ context.Context, req provider.FetchRequest) ([]provider.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Offset >= len(f.inbound) {
		return nil, nil
	}
	end := req.Offset + req.Limit
	if end > len(f.inbound) {
		end = len(f.inbound)
	}
	page := make([]provider.Message, end-req.Offset)
	copy(page, f.inbound[req.Offset:end])
	return page, nil
}

func (f *fakeProvider) sends() []provider.SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]provider.SendRequest, len(f.sent))
	copy(out, f.sent)
	return out
}

// memTemplateRepo is an in-memory TemplateRepository.
type memTemplateRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*outboxdomain.Template
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[uuid.UUID]*outboxdomain.Template)}
}

func (r *memTemplateRepo) Create(_ context.Context, t *outboxdomain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *memTemplateRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*outboxdomain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return nil, outboxdomain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTemplateRepo) ListByUserID(_ context.Context, userID uuid.UUID, offset, limit int) ([]*outboxdomain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*outboxdomain.Template
	for _, t := range r.templates {
		if t.UserID == userID {
			cp := *t
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memTemplateRepo) Update(_ context.Context, t *outboxdomain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return outboxdomain.ErrNotFound
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return outboxdomain.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}
