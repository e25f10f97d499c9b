package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestHTTPInterpreterParsesActionEnvelope(t *testing.T) {
	answer := `{"reply":"Drafting the invoice.","action":{"type":"create_invoice","data":{"customer_name":"Asha"}},"confidence":0.9}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != "system" {
			t.Error("expected a leading system message")
		}
		w.Write([]byte(completionBody(answer)))
	}))
	defer server.Close()

	interp := NewHTTPInterpreter(server.URL, "test-key", "test-model")
	out, err := interp.Interpret(context.Background(), &InterpretRequest{
		Mode:    "assistant",
		Message: "bill asha",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ActionType != "create_invoice" {
		t.Errorf("action type = %q", out.ActionType)
	}
	if out.Data["customer_name"] != "Asha" {
		t.Errorf("data = %+v", out.Data)
	}
	if out.Reply != "Drafting the invoice." {
		t.Errorf("reply = %q", out.Reply)
	}
}

func TestHTTPInterpreterNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	interp := NewHTTPInterpreter(server.URL, "k", "m")
	if _, err := interp.Interpret(context.Background(), &InterpretRequest{Message: "hi"}); err == nil {
		t.Fatal("expected an error on a non-200 response")
	}
}

func TestParseInterpreterEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantType  string
		wantReply string
		wantErr   bool
	}{
		{
			name:      "plain reply with null action",
			content:   `{"reply":"Hello","action":null,"confidence":1}`,
			wantReply: "Hello",
		},
		{
			name:      "fenced json",
			content:   "```json\n{\"reply\":\"ok\",\"action\":{\"type\":\"add_stock\",\"data\":{}}}\n```",
			wantReply: "ok",
			wantType:  "add_stock",
		},
		{
			name:    "not json",
			content: "I think you should add a customer.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseInterpreterEnvelope(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", out.Reply, tt.wantReply)
			}
			if out.ActionType != tt.wantType {
				t.Errorf("action type = %q, want %q", out.ActionType, tt.wantType)
			}
		})
	}
}

func TestMockInterpreterIntents(t *testing.T) {
	interp := NewMockInterpreter()

	out, err := interp.Interpret(context.Background(), &InterpretRequest{
		Mode:    "assistant",
		Message: "Make an invoice for Asha, 2 pcs gold chain 10 grams rate 6450",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ActionType != "create_invoice" {
		t.Fatalf("action type = %q", out.ActionType)
	}
	if out.Data["customer_name"] != "Asha" {
		t.Errorf("customer_name = %v", out.Data["customer_name"])
	}
	items, ok := out.Data["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("items = %+v", out.Data["items"])
	}
	item := items[0].(map[string]interface{})
	if item["weight"] != "10" || item["price_per_unit"] != "6450" || item["quantity"] != "2" {
		t.Errorf("item = %+v", item)
	}

	out, err = interp.Interpret(context.Background(), &InterpretRequest{
		Mode:    "assistant",
		Message: "add customer named Ravi with aadhar, phone 9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ActionType != "add_customer" {
		t.Fatalf("action type = %q", out.ActionType)
	}
	if out.Data["identity_type"] != "aadhar" || out.Data["phone"] != "9876543210" {
		t.Errorf("data = %+v", out.Data)
	}

	out, err = interp.Interpret(context.Background(), &InterpretRequest{
		Mode:    "assistant",
		Message: "hello there",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ActionType != "" {
		t.Errorf("small talk must not produce an action, got %q", out.ActionType)
	}

	out, err = interp.Interpret(context.Background(), &InterpretRequest{
		Mode:    "help",
		Message: "make an invoice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ActionType != "" {
		t.Errorf("help mode must not produce an action, got %q", out.ActionType)
	}
}
