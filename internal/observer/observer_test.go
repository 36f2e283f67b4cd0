package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func judgeServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if status >= 400 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unhappy","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newObserver(t *testing.T, baseURL string) *LLMObserver {
	t.Helper()
	return NewLLMObserver(LLMObserverConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "judge-1",
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestLLMObserver_DerivesSafety(t *testing.T) {
	tests := []struct {
		name      string
		verdict   string
		wantSafe  bool
		malicious bool
		complied  bool
	}{
		{
			"malicious and complied is unsafe",
			`{"input_malicious": true, "ai_complied": true, "reasoning": "model followed the jailbreak"}`,
			false, true, true,
		},
		{
			"malicious but refused is safe",
			`{"input_malicious": true, "ai_complied": false, "reasoning": "model refused"}`,
			true, true, false,
		},
		{
			"innocuous input is safe even with odd behavior",
			`{"input_malicious": false, "ai_complied": true, "reasoning": "benign request"}`,
			true, false, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := judgeServer(t, http.StatusOK, tt.verdict)
			defer srv.Close()

			res, err := newObserver(t, srv.URL).Observe(context.Background(), "in", "out")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.IsSafe != tt.wantSafe || res.InputMalicious != tt.malicious || res.AIComplied != tt.complied {
				t.Errorf("unexpected result: %+v", res)
			}
		})
	}
}

func TestLLMObserver_RepairsSloppyVerdictJSON(t *testing.T) {
	// Judge models love markdown fences and trailing commas.
	sloppy := "```json\n{\"input_malicious\": true, \"ai_complied\": true, \"reasoning\": \"complied\",}\n```"
	srv := judgeServer(t, http.StatusOK, sloppy)
	defer srv.Close()

	res, err := newObserver(t, srv.URL).Observe(context.Background(), "in", "out")
	if err != nil {
		t.Fatalf("expected repaired verdict, got error: %v", err)
	}
	if res.IsSafe {
		t.Error("expected unsafe verdict after repair")
	}
}

func TestLLMObserver_ServerErrorIsTransient(t *testing.T) {
	srv := judgeServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	_, err := newObserver(t, srv.URL).Observe(context.Background(), "in", "out")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransient(err) {
		t.Errorf("expected 5xx to be transient, got %v", err)
	}
}

func TestLLMObserver_AuthErrorIsPermanent(t *testing.T) {
	srv := judgeServer(t, http.StatusUnauthorized, "")
	defer srv.Close()

	_, err := newObserver(t, srv.URL).Observe(context.Background(), "in", "out")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransient(err) {
		t.Errorf("expected 401 to be permanent, got transient: %v", err)
	}
}

func TestLLMObserver_RateLimitIsTransient(t *testing.T) {
	srv := judgeServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := newObserver(t, srv.URL).Observe(context.Background(), "in", "out")
	if !IsTransient(err) {
		t.Errorf("expected 429 to be transient, got %v", err)
	}
}

func TestFailedObservation(t *testing.T) {
	res := FailedObservation(context.DeadlineExceeded)
	if res.IsSafe {
		t.Error("failed observation must not report safe")
	}
	if res.Reasoning != "observation failed: context deadline exceeded" {
		t.Errorf("unexpected reasoning: %s", res.Reasoning)
	}
}

func TestParseFallbackPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FallbackPolicy
		wantErr bool
	}{
		{"block", FallbackBlock, false},
		{"allow", FallbackAllow, false},
		{"allow_if_gate2_passed", FallbackAllowIfGate2Passed, false},
		{"", FallbackAllowIfGate2Passed, false},
		{"yolo", FallbackBlock, true},
	}
	for _, tt := range tests {
		got, err := ParseFallbackPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFallbackPolicy(%q) error = %v", tt.in, err)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFallbackPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
