package views

import (
	"context"
	"strings"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

// ChatState is a point-in-time copy of a ChatView.
type ChatState struct {
	Turns []legal.Turn
	Busy  bool
}

// ChatView is the AI counselor conversation.
type ChatView struct {
	base

	turns []legal.Turn
}

func newChatView(deps Deps) *ChatView {
	return &ChatView{
		base:  newBase(ViewChat, deps),
		turns: []legal.Turn{{Role: legal.RoleAssistant, Content: ChatGreeting}},
	}
}

// Submit appends message as a user turn, asks the gateway for a reply and
// appends exactly one assistant turn: the reply, ChatEmptyReply when the reply
// is empty, or ChatConnectionLost when the call fails. Blank messages are
// ignored.
func (v *ChatView) Submit(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	v.mu.Lock()
	if err := v.beginLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	prior := append([]legal.Turn(nil), v.turns...)
	v.turns = append(v.turns, legal.Turn{Role: legal.RoleUser, Content: message})
	v.mu.Unlock()

	reply, err := v.deps.Gateway.ChatWithWorker(ctx, prior, message)

	v.mu.Lock()
	defer v.mu.Unlock()
	if endErr := v.endLocked(); endErr != nil {
		return endErr
	}

	switch {
	case err != nil:
		v.logger.Warn("chat failed", "error", err)
		reply = ChatConnectionLost
	case strings.TrimSpace(reply) == "":
		reply = ChatEmptyReply
	}
	v.turns = append(v.turns, legal.Turn{Role: legal.RoleAssistant, Content: reply})
	return nil
}

// Turns returns a copy of the conversation so far.
func (v *ChatView) Turns() []legal.Turn {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]legal.Turn(nil), v.turns...)
}

// Snapshot copies the view state.
func (v *ChatView) Snapshot() ChatState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ChatState{
		Turns: append([]legal.Turn(nil), v.turns...),
		Busy:  v.busy,
	}
}

// Restore replaces the conversation with a previously saved one. An empty
// transcript leaves the greeting in place.
func (v *ChatView) Restore(turns []legal.Turn) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.readyLocked(); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	v.turns = append([]legal.Turn(nil), turns...)
	return nil
}
