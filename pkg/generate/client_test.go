package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"soul-lifter-go/internal/config"
)

func testConfig(baseURL string) config.GenerationConfig {
	return config.GenerationConfig{
		BaseURL:           baseURL,
		Model:             "test-model",
		MaxLength:         1000,
		EOSTokenID:        50256,
		Temperature:       0.7,
		TopK:              50,
		TopP:              0.9,
		NoRepeatNgramSize: 3,
		TimeoutSeconds:    5,
	}
}

func TestGenerate_SendsSamplingParameters(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"output_ids": []int64{1, 2, 3, 4, 5},
		})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(testConfig(srv.URL))
	out, err := client.Generate(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("unexpected output: %v", out)
	}

	// 采样参数与配置一致
	if got["max_length"].(float64) != 1000 {
		t.Fatalf("unexpected max_length: %v", got["max_length"])
	}
	if got["pad_token_id"].(float64) != 50256 {
		t.Fatalf("unexpected pad_token_id: %v", got["pad_token_id"])
	}
	if got["temperature"].(float64) != 0.7 || got["top_k"].(float64) != 50 || got["top_p"].(float64) != 0.9 {
		t.Fatalf("unexpected sampling params: %v", got)
	}
	if got["no_repeat_ngram_size"].(float64) != 3 {
		t.Fatalf("unexpected no_repeat_ngram_size: %v", got["no_repeat_ngram_size"])
	}
	if got["do_sample"].(bool) != true {
		t.Fatalf("expected do_sample true")
	}
}

func TestGenerate_TruncatedOutputIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 输出比输入还短，属于畸形结果
		json.NewEncoder(w).Encode(map[string]interface{}{"output_ids": []int64{1}})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(testConfig(srv.URL))
	if _, err := client.Generate(context.Background(), []int64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for truncated output")
	}
}

func TestEncodeDecode_RoundTripThroughAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/encode":
			json.NewEncoder(w).Encode(map[string]interface{}{"ids": []int64{11, 22}})
		case "/decode":
			var req struct {
				IDs               []int64 `json:"ids"`
				SkipSpecialTokens bool    `json:"skip_special_tokens"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if !req.SkipSpecialTokens {
				t.Errorf("expected skip_special_tokens true")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"text": "hello"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(testConfig(srv.URL))

	ids, err := client.Encode(context.Background(), "hello")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(ids) != 2 || ids[0] != 11 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	text, err := client.Decode(context.Background(), ids)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected text: %q", text)
	}
}
