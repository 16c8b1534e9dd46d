// Package generate 提供了对话生成模型服务的客户端。
// 模型被视为黑盒：分词、采样生成与解码都委托给远端推理服务完成。
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"soul-lifter-go/internal/config"
)

// Client defines the interface for a dialogue generation client.
type Client interface {
	// Encode 将文本分词为 token ID 序列。
	Encode(ctx context.Context, text string) ([]int64, error)
	// Generate 以完整输入序列为上下文采样生成，返回包含输入在内的完整输出序列。
	Generate(ctx context.Context, inputIDs []int64) ([]int64, error)
	// Decode 将 token ID 序列还原为文本（跳过特殊 token）。
	Decode(ctx context.Context, ids []int64) (string, error)
}

type inferenceClient struct {
	cfg    config.GenerationConfig
	client *http.Client
}

// NewClient creates a new generation client based on the config.
func NewClient(cfg config.GenerationConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 30 * time.Second
	}
	return &inferenceClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type encodeRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type encodeResponse struct {
	IDs []int64 `json:"ids"`
}

type generateRequest struct {
	Model             string  `json:"model"`
	InputIDs          []int64 `json:"input_ids"`
	MaxLength         int     `json:"max_length"`
	PadTokenID        int64   `json:"pad_token_id"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	DoSample          bool    `json:"do_sample"`
	Temperature       float64 `json:"temperature"`
	TopK              int     `json:"top_k"`
	TopP              float64 `json:"top_p"`
}

type generateResponse struct {
	OutputIDs []int64 `json:"output_ids"`
}

type decodeRequest struct {
	Model             string  `json:"model"`
	IDs               []int64 `json:"ids"`
	SkipSpecialTokens bool    `json:"skip_special_tokens"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

// Encode 调用推理服务的 /encode 接口。
func (c *inferenceClient) Encode(ctx context.Context, text string) ([]int64, error) {
	var resp encodeResponse
	if err := c.post(ctx, "/encode", encodeRequest{Model: c.cfg.Model, Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// Generate 调用推理服务的 /generate 接口，采样参数来自配置。
func (c *inferenceClient) Generate(ctx context.Context, inputIDs []int64) ([]int64, error) {
	req := generateRequest{
		Model:             c.cfg.Model,
		InputIDs:          inputIDs,
		MaxLength:         c.cfg.MaxLength,
		PadTokenID:        c.cfg.EOSTokenID,
		NoRepeatNgramSize: c.cfg.NoRepeatNgramSize,
		DoSample:          true,
		Temperature:       c.cfg.Temperature,
		TopK:              c.cfg.TopK,
		TopP:              c.cfg.TopP,
	}

	var resp generateResponse
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.OutputIDs) < len(inputIDs) {
		// 输出必须至少包含输入序列，否则视为模型返回了畸形结果
		return nil, fmt.Errorf("generation api returned truncated output: got %d ids, input was %d", len(resp.OutputIDs), len(inputIDs))
	}
	return resp.OutputIDs, nil
}

// Decode 调用推理服务的 /decode 接口。
func (c *inferenceClient) Decode(ctx context.Context, ids []int64) (string, error) {
	var resp decodeResponse
	if err := c.post(ctx, "/decode", decodeRequest{Model: c.cfg.Model, IDs: ids, SkipSpecialTokens: true}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *inferenceClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create generation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation api returned non-200 status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode generation response: %w", err)
	}
	return nil
}
