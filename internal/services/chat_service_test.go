package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/models"
)

const threadJSON = `{
	"_id": "c1",
	"participants": [{"_id": "u1", "username": "ada"}, {"_id": "u2", "username": "linus"}],
	"messages": [
		{"_id": "m1", "sender": "u2", "content": "hi", "createdAt": "2024-05-01T10:00:00Z", "read": false},
		{"_id": "m2", "sender": "u2", "content": "there?", "createdAt": "2024-05-01T10:01:00Z", "read": false}
	],
	"status": "approved",
	"updatedAt": "2024-05-01T10:01:00Z"
}`

const otherJSON = `{"_id": "c2", "participants": ["u1", "u3"], "messages": [], "updatedAt": "2024-04-01T00:00:00Z"}`

func newChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: []json.RawMessage{json.RawMessage(threadJSON), json.RawMessage(otherJSON)}}
}

func TestChatService_ListSelectsDeepLinkedChat(t *testing.T) {
	svc := NewChatService(newChatRepo(), time.Second, quietLogger())

	list, err := svc.List(context.Background(), ListChatsInput{UserID: "u1", Fragment: "#messages:c2", Current: "c1"})
	require.NoError(t, err)
	require.Len(t, list.Chats, 2)
	assert.Equal(t, "c2", list.SelectedChatID)
	assert.Equal(t, chat.ComparisonKey(list.Chats), list.Key)

	list, err = svc.List(context.Background(), ListChatsInput{UserID: "u1", Fragment: "#messages:gone", Current: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", list.SelectedChatID)
}

func TestChatService_ListTreatsNotFoundAsEmpty(t *testing.T) {
	repo := &fakeChatRepo{listErr: errNotFound}
	list, err := NewChatService(repo, time.Second, quietLogger()).List(context.Background(), ListChatsInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, list.Chats)
	assert.Equal(t, "", list.Key)
}

func TestChatService_Poll(t *testing.T) {
	svc := NewChatService(newChatRepo(), time.Second, quietLogger())

	first, changed, err := svc.Poll(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = svc.Poll(context.Background(), "u1", first.Key)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestChatService_SendAppendsServerMessage(t *testing.T) {
	repo := newChatRepo()
	repo.postReply = json.RawMessage(`{"_id":"m3","sender":"u1","content":"hello","createdAt":"2024-05-01T10:05:00Z"}`)
	svc := NewChatService(repo, time.Second, quietLogger())

	thread, err := svc.Send(context.Background(), "u1", "c1", "  hello ")
	require.NoError(t, err)

	assert.Equal(t, "hello", repo.lastPosted)
	require.Len(t, thread.Messages, 3)
	last := thread.Messages[2]
	assert.Equal(t, "m3", last.ID)
	assert.Equal(t, "hello", last.Content)
	assert.Equal(t, "u1", last.SenderID)
	assert.Equal(t, last.CreatedAt, thread.UpdatedAt)
}

func TestChatService_SendAcceptsWholeChatReply(t *testing.T) {
	repo := newChatRepo()
	repo.postReply = json.RawMessage(`{"_id":"c1","messages":[{"_id":"m1","sender":"u1","content":"only"}]}`)
	svc := NewChatService(repo, time.Second, quietLogger())

	thread, err := svc.Send(context.Background(), "u1", "c1", "only")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, 0, repo.listCalls)
}

func TestChatService_SendValidation(t *testing.T) {
	repo := newChatRepo()
	svc := NewChatService(repo, time.Second, quietLogger())

	_, err := svc.Send(context.Background(), "u1", "c1", "   ")
	assert.ErrorIs(t, err, ErrMessageEmpty)
	assert.Empty(t, repo.lastPosted)

	repo.postErr = &backend.Error{Status: http.StatusForbidden, Message: "Chat not approved"}
	_, err = svc.Send(context.Background(), "u1", "c1", "hi")
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestChatService_MarkReadZeroesUnread(t *testing.T) {
	repo := newChatRepo()
	svc := NewChatService(repo, time.Second, quietLogger())

	list, err := svc.List(context.Background(), ListChatsInput{UserID: "u1"})
	require.NoError(t, err)
	before, _ := chat.Find(list.Chats, "c1")
	require.Equal(t, 2, chat.UnreadCount(before, "u1"))

	read, err := svc.MarkRead(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.markCalls)
	for _, m := range read.Messages {
		assert.True(t, m.Read)
	}
	assert.Equal(t, 0, chat.UnreadCount(*read, "u1"))
}

func TestChatService_MarkReadFailureSurfaces(t *testing.T) {
	repo := newChatRepo()
	repo.markErr = backend.ErrUnavailable
	_, err := NewChatService(repo, time.Second, quietLogger()).MarkRead(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestChatService_StartChat(t *testing.T) {
	repo := newChatRepo()
	svc := NewChatService(repo, time.Second, quietLogger())

	_, err := svc.StartChat(context.Background(), "u1", StartChatInput{})
	assert.ErrorIs(t, err, ErrParticipantRequired)
	_, err = svc.StartChat(context.Background(), "u1", StartChatInput{ParticipantID: "u1"})
	assert.ErrorIs(t, err, ErrCannotChatWithSelf)
	_, err = svc.StartChat(context.Background(), "u1", StartChatInput{Type: models.ChatTypeProject})
	assert.ErrorIs(t, err, ErrProjectRequired)
	_, err = svc.StartChat(context.Background(), "u1", StartChatInput{Type: "broadcast"})
	assert.ErrorIs(t, err, ErrInvalidChatType)

	c, err := svc.StartChat(context.Background(), "u1", StartChatInput{ParticipantID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "c-new", c.ID)
	assert.Equal(t, models.ChatTypeIndividual, repo.created.Type)
	assert.True(t, c.HasParticipant("u2"))
}

func TestChatService_CreateGroup(t *testing.T) {
	repo := newChatRepo()
	svc := NewChatService(repo, time.Second, quietLogger())

	_, err := svc.CreateGroup(context.Background(), CreateGroupInput{ParticipantIDs: []string{"u1", "u2"}})
	assert.ErrorIs(t, err, ErrGroupNameRequired)
	_, err = svc.CreateGroup(context.Background(), CreateGroupInput{Name: "Team", ParticipantIDs: []string{"u1", "u1"}})
	assert.ErrorIs(t, err, ErrGroupTooSmall)

	c, err := svc.CreateGroup(context.Background(), CreateGroupInput{Name: " Team ", ParticipantIDs: []string{"u1", "u2", "u3"}})
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeGroup, c.Type)
	assert.Equal(t, "Team", repo.group.Name)
}

func TestChatService_AdminActions(t *testing.T) {
	svc := NewChatService(newChatRepo(), time.Second, quietLogger())
	ctx := context.Background()

	c, err := svc.AddAdmin(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ChatStatusWithAdmin, c.Status)

	c, err = svc.Approve(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ChatStatusApproved, c.Status)

	c, err = svc.AddParticipant(ctx, "c1", "u9")
	require.NoError(t, err)
	assert.True(t, c.HasParticipant("u9"))

	c, err = svc.RemoveParticipant(ctx, "c1", "u9")
	require.NoError(t, err)
	assert.False(t, c.HasParticipant("u9"))
}

func TestChatService_PollerUsesServiceFetch(t *testing.T) {
	svc := NewChatService(newChatRepo(), time.Second, quietLogger())
	p := svc.NewPoller("u1", "")

	ev, ok := p.Poll(context.Background())
	require.True(t, ok)
	assert.Len(t, ev.Chats, 2)
}
