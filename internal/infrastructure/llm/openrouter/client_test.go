package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestExtractDraftParsesStructuredContent(t *testing.T) {
	var captured chatRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		chatReply(t, w, `Here is the data:
{"contract_title":"MSA","customer":{"name":"Acme Corp"},"payment_structure":{"payment_terms":"Net 30"}}`)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "openai/gpt-4o-mini", Options{})
	draft, err := client.ExtractDraft(context.Background(), "some contract text")
	if err != nil {
		t.Fatalf("ExtractDraft: %v", err)
	}

	if draft.ContractTitle != "MSA" {
		t.Errorf("contract title = %q, want MSA", draft.ContractTitle)
	}
	if draft.Customer == nil || draft.Customer.Name != "Acme Corp" {
		t.Errorf("customer = %+v, want Acme Corp", draft.Customer)
	}
	if draft.PaymentStructure == nil || draft.PaymentStructure.PaymentTerms != "Net 30" {
		t.Errorf("payment structure = %+v, want Net 30", draft.PaymentStructure)
	}

	if authHeader != "Bearer sk-test" {
		t.Errorf("authorization header = %q", authHeader)
	}
	if captured.Model != "openai/gpt-4o-mini" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", captured.Temperature)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response format = %q, want json_object", captured.ResponseFormat.Type)
	}
	if len(captured.Messages) != 2 || !strings.Contains(captured.Messages[1].Content, "some contract text") {
		t.Errorf("messages missing contract text: %+v", captured.Messages)
	}
}

func TestExtractDraftRateLimitedIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "openai/gpt-4o-mini", Options{})
	_, err := client.ExtractDraft(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Errorf("error = %v, want temporary kind", err)
	}
}

func TestExtractDraftClientErrorIsPermanentAndKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "bad/model", Options{})
	_, err := client.ExtractDraft(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Errorf("error = %v, want permanent", err)
	}
	if !strings.Contains(err.Error(), "invalid model") {
		t.Errorf("error %q does not include response body", err)
	}
}

func TestExtractDraftUnparseableContentIsUnreadable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, "I could not find any structured data in this document.")
	}))
	defer server.Close()

	client := New(server.URL, "sk-test", "openai/gpt-4o-mini", Options{})
	_, err := client.ExtractDraft(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Errorf("error = %v, want unreadable document kind", err)
	}
}

func TestExtractDraftRejectsEmptyText(t *testing.T) {
	client := New("http://127.0.0.1:1", "sk-test", "openai/gpt-4o-mini", Options{})
	_, err := client.ExtractDraft(context.Background(), "   \n ")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Errorf("error = %v, want unreadable document kind", err)
	}
}

func TestExtractJSONObjectTrimsSurroundingText(t *testing.T) {
	got := extractJSONObject("```json\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Errorf("extractJSONObject = %q", got)
	}
	if got := extractJSONObject("no json here"); got != "no json here" {
		t.Errorf("passthrough = %q", got)
	}
}
