// Package emotion 提供了情绪分类模型服务的客户端。
package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"soul-lifter-go/internal/config"
	"soul-lifter-go/pkg/log"
)

// Client defines the interface for an emotion classification client.
type Client interface {
	// Classify 对单条输入进行情绪分类，返回置信度最高的标签及其得分。
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

type httpClient struct {
	cfg    config.EmotionConfig
	client *http.Client
}

// NewClient creates a new emotion classification client based on the config.
func NewClient(cfg config.EmotionConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// 分类服务返回按得分降序排列的候选列表
type classifyResponse struct {
	Results []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Classify 调用分类服务并提取 top-1 结果。
func (c *httpClient) Classify(ctx context.Context, text string) (string, float64, error) {
	reqBody := classifyRequest{Model: c.cfg.Model, Text: text}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/classify", bytes.NewReader(reqBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create classify request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[EmotionClient] 调用分类 API 失败, error: %v", err)
		return "", 0, fmt.Errorf("failed to call classify api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[EmotionClient] 分类 API 返回非 200 状态码: %s", resp.Status)
		return "", 0, fmt.Errorf("classify api returned non-200 status: %s", resp.Status)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Errorf("[EmotionClient] 解析分类 API 响应失败, error: %v", err)
		return "", 0, fmt.Errorf("failed to decode classify response: %w", err)
	}

	if len(decoded.Results) == 0 {
		log.Warnf("[EmotionClient] 分类 API 返回了空的结果列表")
		return "", 0, fmt.Errorf("received empty classification result from api")
	}

	top := decoded.Results[0]
	if top.Score < 0 || top.Score > 1 {
		return "", 0, fmt.Errorf("classification score out of range: %f", top.Score)
	}
	return top.Label, top.Score, nil
}
