package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/dto"
)

func (suite *HandlerTestSuite) TestListChats_UnreadAndDeepLinks() {
	suite.login("fred")

	w := suite.get("/api/chats")

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ChatListResponse
	suite.decode(w, &resp)
	suite.True(resp.Changed)
	suite.NotEmpty(resp.Key)
	suite.Require().Len(resp.Chats, 2)
	suite.Equal("c1", resp.Chats[0].ID)
	suite.Equal(2, resp.Chats[0].Unread)
	suite.Equal("#messages:c1", resp.Chats[0].DeepLink)
	suite.Equal(2, resp.TotalUnread)
}

func (suite *HandlerTestSuite) TestListChats_HashSelectsKnownChat() {
	suite.login("fred")

	w := suite.get("/api/chats?hash=messages:c2&selected=c1")
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ChatListResponse
	suite.decode(w, &resp)
	suite.Equal("c2", resp.SelectedChatID)

	w = suite.get("/api/chats?hash=messages:missing&selected=c1")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.Equal("c1", resp.SelectedChatID)
}

func (suite *HandlerTestSuite) TestListChats_SinceCurrentKeyIsUnchanged() {
	suite.login("fred")

	var first dto.ChatListResponse
	suite.decode(suite.get("/api/chats"), &first)

	w := suite.get("/api/chats?since=" + first.Key)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ChatListResponse
	suite.decode(w, &resp)
	suite.False(resp.Changed)
	suite.Empty(resp.Chats)
	suite.Equal(first.Key, resp.Key)
}

func (suite *HandlerTestSuite) TestSendMessage_AppearsInThread() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPost, "/api/chats/c1/messages", gin.H{"content": "  Yes, I am free  "})

	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var thread dto.ChatDTO
	suite.decode(w, &thread)
	suite.Require().Len(thread.Messages, 3)
	last := thread.Messages[2]
	suite.Equal("Yes, I am free", last.Content)
	suite.Equal("u-freelancer", last.SenderID)

	// The key moves, so pollers holding the old one see a change
	var after dto.ChatListResponse
	suite.decode(suite.get("/api/chats"), &after)
	suite.Len(after.Chats[0].Messages, 3)
}

func (suite *HandlerTestSuite) TestSendMessage_EmptyContent() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPost, "/api/chats/c1/messages", gin.H{"content": "   "})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestSendMessage_UnknownChat() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPost, "/api/chats/nope/messages", gin.H{"content": "hello"})

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestMarkRead_ZeroesUnread() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPatch, "/api/chats/c1/read", nil)

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var thread dto.ChatDTO
	suite.decode(w, &thread)
	suite.Equal(0, thread.Unread)
	for _, m := range thread.Messages {
		suite.True(m.Read)
	}
}

func (suite *HandlerTestSuite) TestApproveChat_AdminOnly() {
	suite.login("fred")

	w := suite.sendJSON(http.MethodPatch, "/api/chats/c1/approve", nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestStreamChats_SendsSnapshot() {
	suite.login("fred")

	server := httptest.NewServer(suite.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/chats/stream", nil)
	suite.Require().NoError(err)
	for _, ck := range suite.cookies {
		req.AddCookie(ck)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimPrefix(line, "event:")
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimPrefix(line, "data:")
			break
		}
	}
	suite.Equal("chats", event)
	suite.Contains(data, `"id":"c1"`)
}

func (suite *HandlerTestSuite) TestStreamChats_LogoutWhenSessionDies() {
	suite.login("fred")
	suite.backend.revoke()

	server := httptest.NewServer(suite.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/chats/stream", nil)
	suite.Require().NoError(err)
	for _, ck := range suite.cookies {
		req.AddCookie(ck)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var events []string
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "event:") {
			events = append(events, strings.TrimPrefix(line, "event:"))
		}
	}
	suite.Equal([]string{"logout"}, events)
}
