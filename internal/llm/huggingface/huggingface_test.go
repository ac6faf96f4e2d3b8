package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/llm"
)

func TestClient_ImplementsInterface(t *testing.T) {
	var _ llm.Client = (*Client)(nil)
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New("", "", "")
	if !errors.Is(err, core.ErrCredentialMissing) {
		t.Errorf("expected credential error, got %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New("", "", "hf_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.baseURL != "https://api-inference.huggingface.co" {
		t.Errorf("unexpected default base URL %q", c.baseURL)
	}
	if c.model != "mistralai/Mistral-7B-Instruct-v0.3" {
		t.Errorf("unexpected default model %q", c.model)
	}
}

func TestBuildPrompt_SingleUserTurn(t *testing.T) {
	prompt := BuildPrompt([]llm.Message{llm.UserMessage("hi")})
	if prompt != "<s>[INST] hi [/INST]" {
		t.Errorf("unexpected prompt %q", prompt)
	}
}

func TestBuildPrompt_MultiTurn(t *testing.T) {
	prompt := BuildPrompt([]llm.Message{
		llm.UserMessage("hi"),
		llm.AssistantMessage("hello"),
		llm.UserMessage("bye"),
	})
	want := "<s>[INST] hi [/INST] hello </s><s>[INST] bye [/INST]"
	if prompt != want {
		t.Errorf("got %q, want %q", prompt, want)
	}
}

func TestBuildPrompt_TrailingAssistantTurn(t *testing.T) {
	prompt := BuildPrompt([]llm.Message{
		llm.UserMessage("hi"),
		llm.AssistantMessage("hello"),
	})
	want := "<s>[INST] hi [/INST] hello </s>"
	if prompt != want {
		t.Errorf("got %q, want %q", prompt, want)
	}
}

func TestBuildPrompt_Empty(t *testing.T) {
	if prompt := BuildPrompt(nil); prompt != "" {
		t.Errorf("expected empty prompt, got %q", prompt)
	}
}

func TestGenerate_EmptyTurns(t *testing.T) {
	c, _ := New("http://unused", "m", "key")
	_, err := c.Generate(context.Background(), nil)
	if !errors.Is(err, core.ErrLLMEmptyPrompt) {
		t.Errorf("expected empty prompt error, got %v", err)
	}
}

func newStub(t *testing.T, status int, body string) (*httptest.Server, *Client) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, "test-model", "hf_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ts, c
}

func TestGenerate_Success(t *testing.T) {
	_, c := newStub(t, http.StatusOK, `[{"generated_text": "a reply"}]`)

	reply, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "a reply" {
		t.Errorf("expected %q, got %q", "a reply", reply.Text)
	}
}

func TestGenerate_StripsEchoedPrompt(t *testing.T) {
	echoed := "<s>[INST] hi [/INST] the actual answer"
	body, _ := json.Marshal([]generation{{GeneratedText: echoed}})
	_, c := newStub(t, http.StatusOK, string(body))

	reply, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "the actual answer" {
		t.Errorf("expected echo stripped, got %q", reply.Text)
	}
}

func TestGenerate_UpstreamStatus(t *testing.T) {
	_, c := newStub(t, http.StatusServiceUnavailable, `{"error": "model loading"}`)

	_, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if !errors.Is(err, core.ErrLLMUpstreamStatus) {
		t.Errorf("expected upstream status error, got %v", err)
	}
}

func TestGenerate_NotAnArray(t *testing.T) {
	_, c := newStub(t, http.StatusOK, `{"generated_text": "oops"}`)

	_, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if !errors.Is(err, core.ErrLLMBadResponse) {
		t.Errorf("expected bad response error, got %v", err)
	}
}

func TestGenerate_EmptyArray(t *testing.T) {
	_, c := newStub(t, http.StatusOK, `[]`)

	_, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if !errors.Is(err, core.ErrLLMBadResponse) {
		t.Errorf("expected bad response error, got %v", err)
	}
}

func TestGenerate_EmptyGeneratedText(t *testing.T) {
	_, c := newStub(t, http.StatusOK, `[{"generated_text": ""}]`)

	_, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if !errors.Is(err, core.ErrLLMEmptyResponse) {
		t.Errorf("expected empty response error, got %v", err)
	}
}

func TestGenerate_Transport(t *testing.T) {
	ts, c := newStub(t, http.StatusOK, `[]`)
	ts.Close()

	_, err := c.Generate(context.Background(), []llm.Message{llm.UserMessage("hi")})
	if !errors.Is(err, core.ErrLLMTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestStripPromptEcho_NoPrefix(t *testing.T) {
	if got := stripPromptEcho("clean reply", "<s>[INST] hi [/INST]"); got != "clean reply" {
		t.Errorf("expected text untouched, got %q", got)
	}
}
