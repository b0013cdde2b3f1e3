// Package authz decides what an authenticated principal may do inside a
// specific chat. Decisions are pure functions over the chat's membership
// records: no I/O, no clock, no shared state. Callers load the chat, ask for
// a decision, and translate a denial into the externally visible outcome.
package authz

import (
	"github.com/chatgrid/chat-service/internal/core/domain"
)

// Operation enumerates every chat-scoped action the engine can gate.
type Operation string

const (
	OpReadChat      Operation = "read_chat"
	OpRenameChat    Operation = "rename_chat"
	OpDeleteChat    Operation = "delete_chat"
	OpAddMember     Operation = "add_member"
	OpRemoveMember  Operation = "remove_member"
	OpReassignRole  Operation = "reassign_role"
	OpPostMessage   Operation = "post_message"
	OpReadMessage   Operation = "read_message"
	OpEditMessage   Operation = "edit_message"
	OpDeleteMessage Operation = "delete_message"
)

// Reason explains a denial precisely enough for the caller to pick an HTTP
// status without leaking resource existence to outsiders: a non-member
// probing a chat maps to not-found, a member lacking a role to forbidden.
type Reason string

const (
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonNotMember        Reason = "not_a_member"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotAuthor        Reason = "not_author"
	ReasonTargetNotFound   Reason = "target_not_found"
	ReasonWrongChat        Reason = "message_not_in_chat"
	ReasonUnknownOperation Reason = "unknown_operation"
)

// Decision is the outcome of an authorization check. The operation is kept
// so a denial can be mapped to the right externally visible error.
type Decision struct {
	Allowed bool
	Reason  Reason
	op      Operation
}

// Op returns the operation the decision was made for.
func (d Decision) Op() Operation {
	return d.op
}

// Target carries the optional object of an operation: the user acted upon
// for membership changes, or the message acted upon for message operations.
type Target struct {
	UserID  string
	Message *domain.Message
}

// Authorize evaluates the role matrix for one (principal, chat, operation)
// triple. Every ambiguity resolves to a denial; there is no default-allow
// path anywhere in this function.
func Authorize(p domain.Principal, chat *domain.Chat, op Operation, target *Target) Decision {
	allow := Decision{Allowed: true, op: op}
	deny := func(r Reason) Decision {
		return Decision{Reason: r, op: op}
	}

	if !p.IsAuthenticated() {
		return deny(ReasonUnauthenticated)
	}
	if chat == nil {
		return deny(ReasonTargetNotFound)
	}

	role, isMember := chat.RoleOf(p.UserID)
	if !isMember {
		return deny(ReasonNotMember)
	}

	switch op {
	case OpReadChat, OpPostMessage, OpReadMessage:
		return allow

	case OpAddMember:
		// Any current member may invite; the invitee always starts as MEMBER.
		return allow

	case OpRenameChat:
		if role.CanModerate() {
			return allow
		}
		return deny(ReasonInsufficientRole)

	case OpDeleteChat:
		if role == domain.RoleAdmin {
			return allow
		}
		return deny(ReasonInsufficientRole)

	case OpRemoveMember, OpReassignRole:
		if role != domain.RoleAdmin {
			return deny(ReasonInsufficientRole)
		}
		if target == nil || target.UserID == "" {
			return deny(ReasonTargetNotFound)
		}
		if !chat.IsMember(target.UserID) {
			return deny(ReasonTargetNotFound)
		}
		return allow

	case OpEditMessage:
		if target == nil || target.Message == nil {
			return deny(ReasonTargetNotFound)
		}
		if target.Message.ChatID != chat.ID {
			return deny(ReasonWrongChat)
		}
		if target.Message.AuthorID != p.UserID {
			return deny(ReasonNotAuthor)
		}
		return allow

	case OpDeleteMessage:
		if target == nil || target.Message == nil {
			return deny(ReasonTargetNotFound)
		}
		if target.Message.ChatID != chat.ID {
			return deny(ReasonWrongChat)
		}
		if target.Message.AuthorID == p.UserID || role.CanModerate() {
			return allow
		}
		return deny(ReasonNotAuthor)
	}

	return deny(ReasonUnknownOperation)
}

// Err maps a denial to the domain error the services surface. Membership is
// itself confidential: a principal who is not a member of the chat learns
// only that the resource was not found, while a member lacking a role sees
// a plain forbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return domain.ErrUnauthenticated
	case ReasonNotMember:
		return domain.ErrChatNotFound
	case ReasonTargetNotFound:
		switch d.op {
		case OpRemoveMember, OpReassignRole:
			return domain.ErrMemberNotFound
		case OpEditMessage, OpDeleteMessage:
			return domain.ErrMessageNotFound
		}
		return domain.ErrChatNotFound
	case ReasonWrongChat:
		// Cross-chat message confusion: deny without confirming where the
		// message actually lives.
		return domain.ErrMessageNotFound
	default:
		return domain.ErrForbidden
	}
}
