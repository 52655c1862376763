package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/juampibolanio/trofi-chat-service/internal/config"
	"github.com/juampibolanio/trofi-chat-service/internal/models"
	"github.com/juampibolanio/trofi-chat-service/internal/repository"
	"github.com/juampibolanio/trofi-chat-service/internal/service"
)

type envelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func newTestApp() (*fiber.App, *service.ChatService) {
	repo := repository.NewMemoryRepository()
	svc := service.NewChatService(repo, nil, nil, zap.NewNop().Sugar())
	app := NewServer(&config.Config{}, svc, zap.NewNop().Sugar())
	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp, env
}

func TestStartChat(t *testing.T) {
	app, _ := newTestApp()

	resp, env := doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u1", "receiverId": "u2", "content": "hello",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var chatID string
	_ = json.Unmarshal(env.Data["chatId"], &chatID)
	if chatID != "u1_u2" {
		t.Errorf("expected chatId u1_u2, got %q", chatID)
	}

	// idempotent: same pair, reversed order
	resp, env = doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u2", "receiverId": "u1",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on repeat, got %d", resp.StatusCode)
	}
	_ = json.Unmarshal(env.Data["chatId"], &chatID)
	if chatID != "u1_u2" {
		t.Errorf("expected same chatId, got %q", chatID)
	}
}

func TestStartChatValidation(t *testing.T) {
	app, _ := newTestApp()

	resp, env := doJSON(t, app, "POST", "/chat/start", map[string]string{"senderId": "u1"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("expected success=false envelope")
	}

	resp, _ = doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u1", "receiverId": "u1",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for self chat, got %d", resp.StatusCode)
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	app, _ := newTestApp()
	doJSON(t, app, "POST", "/chat/start", map[string]string{"senderId": "u1", "receiverId": "u2"})

	resp, env := doJSON(t, app, "POST", "/chat/u1_u2/message", map[string]string{
		"senderId": "u2", "content": "hi back",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var msg models.Message
	_ = json.Unmarshal(env.Data["message"], &msg)
	if msg.ID == "" || msg.SenderID != "u2" || msg.Content != "hi back" {
		t.Errorf("unexpected message payload: %+v", msg)
	}

	resp, _ = doJSON(t, app, "POST", "/chat/u1_u2/message", map[string]string{
		"senderId": "intruder", "content": "hi",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for non-participant, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/chat/a_b/message", map[string]string{
		"senderId": "a", "content": "hi",
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing chat, got %d", resp.StatusCode)
	}
}

func TestGetMessagesEndpoint(t *testing.T) {
	app, _ := newTestApp()
	doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u1", "receiverId": "u2", "content": "hello",
	})
	doJSON(t, app, "POST", "/chat/u1_u2/message", map[string]string{
		"senderId": "u2", "content": "hi back",
	})

	resp, env := doJSON(t, app, "GET", "/chat/u1_u2/messages?limit=50", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var msgs []models.Message
	_ = json.Unmarshal(env.Data["messages"], &msgs)
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].Content != "hi back" {
		t.Errorf("expected [hello, hi back], got %v", msgs)
	}

	resp, _ = doJSON(t, app, "GET", "/chat/a_b/messages", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing chat, got %d", resp.StatusCode)
	}
}

func TestUserChatsAndSoftDelete(t *testing.T) {
	app, _ := newTestApp()
	doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u1", "receiverId": "u2", "content": "hello",
	})

	resp, env := doJSON(t, app, "GET", "/chat/user/u1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var chats []models.Chat
	_ = json.Unmarshal(env.Data["chats"], &chats)
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}

	resp, _ = doJSON(t, app, "DELETE", "/chat/u1_u2/user/u1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}

	_, env = doJSON(t, app, "GET", "/chat/user/u1", nil)
	_ = json.Unmarshal(env.Data["chats"], &chats)
	if len(chats) != 0 {
		t.Error("chat still listed for deleting user")
	}

	_, env = doJSON(t, app, "GET", "/chat/user/u2", nil)
	_ = json.Unmarshal(env.Data["chats"], &chats)
	if len(chats) != 1 {
		t.Error("soft delete leaked to the other participant")
	}
}

func TestDeleteMessageEndpoint(t *testing.T) {
	app, svc := newTestApp()
	doJSON(t, app, "POST", "/chat/start", map[string]string{"senderId": "u1", "receiverId": "u2"})
	msg, err := svc.SendMessage(context.Background(), "u1_u2", "u1", "mine")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}

	resp, _ := doJSON(t, app, "DELETE", "/chat/u1_u2/message/"+msg.ID, map[string]string{"userId": "u2"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/chat/u1_u2/message/"+msg.ID, map[string]string{"userId": "u1"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for author, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/chat/u1_u2/message/"+msg.ID, map[string]string{"userId": "u1"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for deleted message, got %d", resp.StatusCode)
	}
}

func TestMarkAsReadEndpoint(t *testing.T) {
	app, _ := newTestApp()
	doJSON(t, app, "POST", "/chat/start", map[string]string{
		"senderId": "u1", "receiverId": "u2", "content": "hello",
	})

	resp, _ := doJSON(t, app, "PUT", "/chat/u1_u2/read", map[string]string{"userId": "u2"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "PUT", "/chat/a_b/read", map[string]string{"userId": "a"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing chat, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp()
	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
