package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// --- user repository stub ---

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by ID
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) add(id, username string) {
	r.users[id] = &domain.User{ID: id, Username: username}
}

// --- chat repository stub ---

type stubChatRepo struct {
	chats map[string]*domain.Chat
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{chats: make(map[string]*domain.Chat)}
}

func cloneChat(c *domain.Chat) *domain.Chat {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Members = append([]domain.Membership(nil), c.Members...)
	return &clone
}

func (r *stubChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.chats[chat.ID] = cloneChat(chat)
	return nil
}

func (r *stubChatRepo) FindByID(_ context.Context, id string) (*domain.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	return cloneChat(c), nil
}

func (r *stubChatRepo) Update(_ context.Context, chat *domain.Chat) error {
	stored, ok := r.chats[chat.ID]
	if !ok {
		return domain.ErrChatNotFound
	}
	if stored.Version != chat.Version {
		return domain.ErrVersionConflict
	}
	updated := cloneChat(chat)
	updated.Version++
	r.chats[chat.ID] = updated
	return nil
}

func (r *stubChatRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.chats[id]; !ok {
		return domain.ErrChatNotFound
	}
	delete(r.chats, id)
	return nil
}

func (r *stubChatRepo) RecordActivity(_ context.Context, chatID string, at time.Time) error {
	c, ok := r.chats[chatID]
	if !ok {
		return domain.ErrChatNotFound
	}
	c.LastActivityAt = at
	c.MessageCount++
	return nil
}

// --- message repository stub ---

type stubMessageRepo struct {
	messages map[string]*domain.Message
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[string]*domain.Message)}
}

func cloneMessage(m *domain.Message) *domain.Message {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.messages[msg.ID] = cloneMessage(msg)
	return nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return cloneMessage(m), nil
}

func (r *stubMessageRepo) FindByChat(_ context.Context, chatID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) Update(_ context.Context, msg *domain.Message) error {
	if _, ok := r.messages[msg.ID]; !ok {
		return domain.ErrMessageNotFound
	}
	r.messages[msg.ID] = cloneMessage(msg)
	return nil
}

func (r *stubMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.messages[id]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *stubMessageRepo) DeleteByChat(_ context.Context, chatID string) error {
	for id, m := range r.messages {
		if m.ChatID == chatID {
			delete(r.messages, id)
		}
	}
	return nil
}

// --- dedup / dispatcher stubs ---

type stubDedup struct {
	seen map[string]string
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]string)}
}

func (d *stubDedup) Lookup(_ context.Context, chatID, authorID, clientMessageID string) (string, error) {
	return d.seen[chatID+":"+authorID+":"+clientMessageID], nil
}

func (d *stubDedup) Remember(_ context.Context, chatID, authorID, clientMessageID, messageID string) error {
	d.seen[chatID+":"+authorID+":"+clientMessageID] = messageID
	return nil
}

type stubDispatcher struct {
	events []ports.ChatActivityEvent
}

func (d *stubDispatcher) Enqueue(event ports.ChatActivityEvent) {
	d.events = append(d.events, event)
}
