package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/api/metrics"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

type messageFixture struct {
	svc        *MessageService
	chats      *stubChatRepo
	messages   *stubMessageRepo
	dedup      *stubDedup
	dispatcher *stubDispatcher
	chat       *domain.Chat
}

// newMessageFixture builds a chat with {A: ADMIN, M: MODERATOR, U: MEMBER}.
func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	chats := newStubChatRepo()
	messages := newStubMessageRepo()
	dedup := newStubDedup()
	dispatcher := &stubDispatcher{}

	chat := &domain.Chat{
		ID:   "C",
		Name: "room",
		Members: []domain.Membership{
			{UserID: "A", Role: domain.RoleAdmin},
			{UserID: "M", Role: domain.RoleModerator},
			{UserID: "U", Role: domain.RoleMember},
		},
		Version: 1,
	}
	if err := chats.Create(context.Background(), chat); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	svc := NewMessageService(messages, chats, dedup, dispatcher, zerolog.Nop())
	return &messageFixture{svc: svc, chats: chats, messages: messages, dedup: dedup, dispatcher: dispatcher, chat: chat}
}

func member(id string) domain.Principal {
	return domain.NewPrincipal(id, "name-"+id, []string{domain.AuthorityUser})
}

func TestMessageService_Post(t *testing.T) {
	f := newMessageFixture(t)

	msg, err := f.svc.Post(context.Background(), member("U"), ports.PostMessageInput{ChatID: "C", Body: "hello"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if msg.ChatID != "C" || msg.AuthorID != "U" || msg.Body != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if len(f.dispatcher.events) != 1 || f.dispatcher.events[0].ChatID != "C" {
		t.Fatalf("expected one activity event for chat C, got %+v", f.dispatcher.events)
	}
}

func TestMessageService_Post_NonMember(t *testing.T) {
	f := newMessageFixture(t)
	denials := metrics.AuthzDenialsTotal.WithLabelValues("post_message", "not_a_member")
	before := testutil.ToFloat64(denials)

	_, err := f.svc.Post(context.Background(), member("U2"), ports.PostMessageInput{ChatID: "C", Body: "hi"})
	if !errors.Is(err, domain.ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound for non-member, got %v", err)
	}
	if len(f.dispatcher.events) != 0 {
		t.Fatalf("denied post must not emit activity")
	}
	if got := testutil.ToFloat64(denials) - before; got != 1 {
		t.Fatalf("denial counter moved by %v, want 1", got)
	}
}

func TestMessageService_Post_IdempotentReplay(t *testing.T) {
	f := newMessageFixture(t)
	in := ports.PostMessageInput{ChatID: "C", Body: "once", ClientMessageID: "client-1"}
	before := testutil.ToFloat64(metrics.MessagesPostedTotal)

	first, err := f.svc.Post(context.Background(), member("U"), in)
	if err != nil {
		t.Fatalf("first post: %v", err)
	}
	second, err := f.svc.Post(context.Background(), member("U"), in)
	if err != nil {
		t.Fatalf("replay post: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay created a new message: %s vs %s", second.ID, first.ID)
	}
	if len(f.dispatcher.events) != 1 {
		t.Fatalf("replay must not emit a second activity event, got %d", len(f.dispatcher.events))
	}
	// The replay returned the stored message without an insert, so only the
	// first post counts as persisted.
	if got := testutil.ToFloat64(metrics.MessagesPostedTotal) - before; got != 1 {
		t.Fatalf("persisted counter moved by %v, want 1", got)
	}
}

func TestMessageService_Post_DedupScopedToAuthor(t *testing.T) {
	f := newMessageFixture(t)
	in := ports.PostMessageInput{ChatID: "C", Body: "mine", ClientMessageID: "client-1"}

	first, err := f.svc.Post(context.Background(), member("U"), in)
	if err != nil {
		t.Fatalf("first author post: %v", err)
	}
	second, err := f.svc.Post(context.Background(), member("M"), in)
	if err != nil {
		t.Fatalf("second author post: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("different authors sharing a client message ID must not collide")
	}
	if second.AuthorID != "M" {
		t.Fatalf("author = %q, want %q", second.AuthorID, "M")
	}
}

func TestMessageService_Get_MembershipRequired(t *testing.T) {
	f := newMessageFixture(t)
	msg, _ := f.svc.Post(context.Background(), member("U"), ports.PostMessageInput{ChatID: "C", Body: "secret"})

	if _, err := f.svc.Get(context.Background(), member("M"), msg.ID); err != nil {
		t.Fatalf("member get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), member("U2"), msg.ID); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("non-member get: expected ErrMessageNotFound, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), domain.Anonymous, msg.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous get: expected ErrUnauthenticated, got %v", err)
	}
}

func TestMessageService_Edit(t *testing.T) {
	f := newMessageFixture(t)
	msg, _ := f.svc.Post(context.Background(), member("U"), ports.PostMessageInput{ChatID: "C", Body: "draft"})

	if err := f.svc.Edit(context.Background(), member("U"), "C", msg.ID, "final"); err != nil {
		t.Fatalf("author edit: %v", err)
	}
	stored, _ := f.messages.FindByID(context.Background(), msg.ID)
	if stored.Body != "final" {
		t.Fatalf("body = %q, want %q", stored.Body, "final")
	}
	if stored.EditedAt.IsZero() {
		t.Fatalf("EditedAt not set")
	}

	// Even a moderator cannot edit someone else's message.
	if err := f.svc.Edit(context.Background(), member("M"), "C", msg.ID, "hijack"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("moderator edit: expected ErrForbidden, got %v", err)
	}
}

func TestMessageService_Edit_CrossChatConfusion(t *testing.T) {
	f := newMessageFixture(t)

	// A second chat the author is also a member of.
	other := &domain.Chat{
		ID:      "C2",
		Members: []domain.Membership{{UserID: "U", Role: domain.RoleAdmin}},
		Version: 1,
	}
	_ = f.chats.Create(context.Background(), other)

	msg, _ := f.svc.Post(context.Background(), member("U"), ports.PostMessageInput{ChatID: "C", Body: "here"})

	// Editing through the wrong chat must fail even for the author.
	if err := f.svc.Edit(context.Background(), member("U"), "C2", msg.ID, "moved"); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("cross-chat edit: expected ErrMessageNotFound, got %v", err)
	}
	stored, _ := f.messages.FindByID(context.Background(), msg.ID)
	if stored.Body != "here" {
		t.Fatalf("cross-chat edit mutated the message")
	}
}

func TestMessageService_Delete_Matrix(t *testing.T) {
	f := newMessageFixture(t)

	post := func() *domain.Message {
		m, err := f.svc.Post(context.Background(), member("U"), ports.PostMessageInput{ChatID: "C", Body: "x"})
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		return m
	}

	// Author deletes own message.
	m := post()
	if err := f.svc.Delete(context.Background(), member("U"), "C", m.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	// Moderator deletes another member's message.
	m = post()
	if err := f.svc.Delete(context.Background(), member("M"), "C", m.ID); err != nil {
		t.Fatalf("moderator delete: %v", err)
	}

	// Admin deletes another member's message.
	m = post()
	if err := f.svc.Delete(context.Background(), member("A"), "C", m.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	// Non-member is told the message does not exist.
	m = post()
	if err := f.svc.Delete(context.Background(), member("U2"), "C", m.ID); !errors.Is(err, domain.ErrChatNotFound) && !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("non-member delete: expected a not-found error, got %v", err)
	}
	if _, err := f.messages.FindByID(context.Background(), m.ID); err != nil {
		t.Fatalf("denied delete removed the message: %v", err)
	}
}

func TestActivityService_Process(t *testing.T) {
	chats := newStubChatRepo()
	chat := &domain.Chat{ID: "C", Version: 1}
	_ = chats.Create(context.Background(), chat)

	svc := NewActivityService(chats, zerolog.Nop())
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.Process(context.Background(), ports.ChatActivityEvent{ChatID: "C", MessageID: "m1", At: at}); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, _ := chats.FindByID(context.Background(), "C")
	if !stored.LastActivityAt.Equal(at) || stored.MessageCount != 1 {
		t.Fatalf("activity not recorded: %+v", stored)
	}
}
