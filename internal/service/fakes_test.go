package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/fathima-sithara/hireloop-backend/internal/models"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
)

// In-memory repo fakes mirroring the mongo implementations' semantics.

type fakeConvRepo struct {
	mu    sync.Mutex
	convs map[string]*models.Conversation
	seq   int
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[string]*models.Conversation)}
}

func cloneConv(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	cp.UnreadCounts = models.UnreadCounts{}
	for k, v := range c.UnreadCounts {
		cp.UnreadCounts[k] = v
	}
	return &cp
}

func (r *fakeConvRepo) Insert(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.convs {
		if ex.Type == c.Type && equalStrings(ex.Participants, c.Participants) {
			return fmt.Errorf("duplicate key")
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("conv-%d", r.seq)
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.convs[c.ID] = cloneConv(c)
	return nil
}

func (r *fakeConvRepo) FindByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneConv(c), nil
}

func (r *fakeConvRepo) FindDirectByParticipants(_ context.Context, a, b string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pair := models.DirectPair(a, b)
	for _, c := range r.convs {
		if c.Type == models.ConversationTypeDirect && equalStrings(c.Participants, pair) {
			return cloneConv(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConvRepo) ListByParticipant(_ context.Context, userID string) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, c := range r.convs {
		for _, p := range c.Participants {
			if p == userID {
				out = append(out, cloneConv(c))
				break
			}
		}
	}
	// mongo repo sorts most recently active first
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConvRepo) ApplyMessageSent(_ context.Context, convID, messageID string, recipients []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[convID]
	if !ok {
		return repository.ErrNotFound
	}
	c.LastMessageID = messageID
	c.UpdatedAt = time.Now().UTC()
	if c.UnreadCounts == nil {
		c.UnreadCounts = models.UnreadCounts{}
	}
	for _, uid := range recipients {
		c.UnreadCounts[uid]++
	}
	return nil
}

func (r *fakeConvRepo) ResetUnread(_ context.Context, convID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[convID]
	if !ok {
		return repository.ErrNotFound
	}
	if c.UnreadCounts == nil {
		c.UnreadCounts = models.UnreadCounts{}
	}
	c.UnreadCounts[userID] = 0
	return nil
}

func (r *fakeConvRepo) Delete(_ context.Context, convID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[convID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.convs, convID)
	return nil
}

func (r *fakeConvRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

type fakeMsgRepo struct {
	mu   sync.Mutex
	msgs []*models.Message
	seq  int
}

func newFakeMsgRepo() *fakeMsgRepo {
	return &fakeMsgRepo{}
}

func cloneMsg(m *models.Message) *models.Message {
	cp := *m
	cp.Attachments = append([]models.Attachment(nil), m.Attachments...)
	cp.ReadBy = append([]string(nil), m.ReadBy...)
	return &cp
}

func (r *fakeMsgRepo) Insert(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = fmt.Sprintf("msg-%d", r.seq)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ReadBy == nil {
		m.ReadBy = []string{}
	}
	r.msgs = append(r.msgs, cloneMsg(m))
	return nil
}

func (r *fakeMsgRepo) find(id string) *models.Message {
	for _, m := range r.msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *fakeMsgRepo) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	if m == nil {
		return nil, repository.ErrNotFound
	}
	return cloneMsg(m), nil
}

func (r *fakeMsgRepo) ListByConversation(_ context.Context, convID string, page, pageSize int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Message
	for _, m := range r.msgs {
		if m.ConversationID == convID {
			all = append(all, cloneMsg(m))
		}
	}
	// newest-first, insertion order stands in for created_at
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= int64(len(all)) {
		return nil, nil
	}
	end := start + pageSize
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], nil
}

func (r *fakeMsgRepo) UpdateContent(_ context.Context, id, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	if m == nil {
		return repository.ErrNotFound
	}
	m.Content = content
	m.IsEdited = true
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeMsgRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	if m == nil {
		return repository.ErrNotFound
	}
	m.Content = models.DeletedMessageContent
	m.IsDeleted = true
	m.Attachments = nil
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeMsgRepo) AddReadBy(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	if m == nil {
		return repository.ErrNotFound
	}
	for _, u := range m.ReadBy {
		if u == userID {
			return nil
		}
	}
	m.ReadBy = append(m.ReadBy, userID)
	return nil
}

func (r *fakeMsgRepo) setCreatedAt(id string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.find(id); m != nil {
		m.CreatedAt = t
	}
}

func (r *fakeMsgRepo) DeleteByConversation(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Message
	var deleted int64
	for _, m := range r.msgs {
		if m.ConversationID == convID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.msgs = kept
	return deleted, nil
}

func (r *fakeMsgRepo) CountByConversation(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.ConversationID == convID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMsgRepo) Search(_ context.Context, convIDs []string, query string, page, pageSize int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[string]bool, len(convIDs))
	for _, id := range convIDs {
		allowed[id] = true
	}
	// same shape the mongo repo sends: case-insensitive, quoted literal
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, err
	}
	var out []*models.Message
	for _, m := range r.msgs {
		if allowed[m.ConversationID] && !m.IsDeleted && re.MatchString(m.Content) {
			out = append(out, cloneMsg(m))
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type publishedEvent struct {
	Channel string
	Event   string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	// onPublish, when set, runs inside each publish call so tests can
	// observe storage state at publish time.
	onPublish func(publishedEvent)
}

func (p *fakePublisher) record(ev publishedEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	hook := p.onPublish
	p.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

func (p *fakePublisher) PublishToUser(userID, event string, payload any) {
	p.record(publishedEvent{Channel: "user:" + userID, Event: event, Payload: payload})
}

func (p *fakePublisher) PublishToRole(role, event string, payload any) {
	p.record(publishedEvent{Channel: role, Event: event, Payload: payload})
}

func (p *fakePublisher) PublishToAll(event string, payload any) {
	p.record(publishedEvent{Channel: "all", Event: event, Payload: payload})
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeNotifRepo struct {
	mu     sync.Mutex
	notifs []*models.Notification
	seq    int
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{}
}

func cloneNotif(n *models.Notification) *models.Notification {
	cp := *n
	if n.Metadata != nil {
		cp.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (r *fakeNotifRepo) Insert(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = fmt.Sprintf("notif-%d", r.seq)
	n.CreatedAt = time.Now().UTC()
	r.notifs = append(r.notifs, cloneNotif(n))
	return nil
}

func (r *fakeNotifRepo) find(id, recipientID string) *models.Notification {
	for _, n := range r.notifs {
		if n.ID == id && n.RecipientID == recipientID {
			return n
		}
	}
	return nil
}

func (r *fakeNotifRepo) List(_ context.Context, recipientID string, f models.NotificationFilter, page, pageSize int64) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifs {
		if n.RecipientID != recipientID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		out = append(out, cloneNotif(n))
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= int64(len(out)) {
		return nil, nil
	}
	end := start + pageSize
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[start:end], nil
}

func (r *fakeNotifRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notif := range r.notifs {
		if notif.RecipientID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotifRepo) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.find(id, recipientID)
	if n == nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (r *fakeNotifRepo) MarkManyRead(_ context.Context, ids []string, recipientID string) (int64, error) {
	var modified int64
	for _, id := range ids {
		if err := r.MarkRead(context.Background(), id, recipientID); err == nil {
			modified++
		}
	}
	return modified, nil
}

func (r *fakeNotifRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var modified int64
	for _, n := range r.notifs {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			modified++
		}
	}
	return modified, nil
}

func (r *fakeNotifRepo) Delete(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifs {
		if n.ID == id && n.RecipientID == recipientID {
			r.notifs = append(r.notifs[:i], r.notifs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotifRepo) DeleteMany(_ context.Context, ids []string, recipientID string) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if err := r.Delete(context.Background(), id, recipientID); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeNotifRepo) DeleteAll(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Notification
	var deleted int64
	for _, n := range r.notifs {
		if n.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifs = kept
	return deleted, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
