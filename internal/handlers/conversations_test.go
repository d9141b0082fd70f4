package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invite-service/internal/lifecycle"
	"invite-service/internal/mocks"
	"invite-service/internal/models"
	"invite-service/internal/repositories"
)

func setupConversationRouter(conversations *mocks.ConversationRepositoryMock, messages *mocks.MessageRepositoryMock, sink *mocks.EventSinkMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("peerID", "bob") })

	var eventSink lifecycle.EventSink
	if sink != nil {
		eventSink = sink
	}
	handler := NewConversationHandler(conversations, messages, eventSink)
	router.GET("/conversations", handler.List)
	router.GET("/conversations/:conversation_id/messages", handler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	return router
}

func testConversation() models.Conversation {
	at := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	return models.Conversation{
		ID:           "chat1",
		ParticipantA: "bob",
		ParticipantB: "alice",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestListConversations(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	router := setupConversationRouter(conversations, new(mocks.MessageRepositoryMock), nil)

	conversations.On("List", mock.Anything, "bob").
		Return([]models.Conversation{testConversation()}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chat1")
	conversations.AssertExpectations(t)
}

func TestGetMessages(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupConversationRouter(conversations, messages, nil)

	conversations.On("Get", mock.Anything, "chat1").Return(testConversation(), nil).Once()
	messages.On("ListByConversation", mock.Anything, "chat1").
		Return([]models.Message{{ID: "msg1", ConversationID: "chat1", Content: "hi"}}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations/chat1/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "msg1")
}

func TestGetMessagesUnknownConversation(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	router := setupConversationRouter(conversations, new(mocks.MessageRepositoryMock), nil)

	conversations.On("Get", mock.Anything, "nope").
		Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations/nope/messages", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMessagesNonParticipant(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupConversationRouter(conversations, messages, nil)

	conv := testConversation()
	conv.ParticipantA, conv.ParticipantB = "carol", "dave"
	conversations.On("Get", mock.Anything, "chat1").Return(conv, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conversations/chat1/messages", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	messages.AssertNotCalled(t, "ListByConversation", mock.Anything, mock.Anything)
}

func TestPostMessage(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	sink := new(mocks.EventSinkMock)
	router := setupConversationRouter(conversations, messages, sink)

	conversations.On("Get", mock.Anything, "chat1").Return(testConversation(), nil).Once()
	messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.ConversationID == "chat1" && m.SenderID == "bob" && m.Content == "hello there" && !m.IsSystem
	})).Return(nil).Once()
	conversations.On("Touch", mock.Anything, "chat1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	sink.On("BroadcastToPeer", "bob", mock.MatchedBy(func(e models.InviteEvent) bool {
		return e.Type == "message" && e.Message != nil
	})).Once()
	sink.On("BroadcastToPeer", "alice", mock.Anything).Once()

	body := bytes.NewBufferString(`{"content":"hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/chat1/messages", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "hello there", got.Content)
	messages.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestPostMessageValidation(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	router := setupConversationRouter(conversations, messages, nil)

	conversations.On("Get", mock.Anything, "chat1").Return(testConversation(), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/chat1/messages", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
