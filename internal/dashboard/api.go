package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"soul-lifter-go/internal/model"
)

// APIClient 封装与后端服务的 HTTP API 交互。
type APIClient struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewAPIClient 创建 API 客户端
func NewAPIClient(baseURL, sessionToken string) *APIClient {
	return &APIClient{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// --- 通用响应 ---
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// --- 会话 ---
type sessionData struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// NewSession 向服务端申请一个新会话
func (c *APIClient) NewSession() (sessionID, token string, err error) {
	resp, err := c.post("/api/v1/session", nil)
	if err != nil {
		return "", "", err
	}
	var result sessionData
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", "", fmt.Errorf("解析会话响应失败: %w", err)
	}
	return result.SessionID, result.Token, nil
}

// Chat 发送一条消息，返回回复与情绪分类结果
func (c *APIClient) Chat(message string) (*model.ChatResponse, error) {
	resp, err := c.post("/api/v1/chat", model.ChatRequest{Message: message})
	if err != nil {
		return nil, err
	}
	var result model.ChatResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("解析对话响应失败: %w", err)
	}
	return &result, nil
}

// Reset 重置当前会话
func (c *APIClient) Reset() (string, error) {
	resp, err := c.post("/api/v1/reset", nil)
	if err != nil {
		return "", err
	}
	var result struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("解析重置响应失败: %w", err)
	}
	return result.Message, nil
}

// Emotions 获取当前会话的服务端情绪统计
func (c *APIClient) Emotions() ([]model.EmotionCountDTO, error) {
	resp, err := c.get("/api/v1/dashboard/emotions")
	if err != nil {
		return nil, err
	}
	var result []model.EmotionCountDTO
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("解析情绪统计失败: %w", err)
	}
	return result, nil
}

// ExportRemote 触发服务端导出，返回对象名与下载链接
func (c *APIClient) ExportRemote() (object, url string, err error) {
	resp, err := c.post("/api/v1/logs/export", nil)
	if err != nil {
		return "", "", err
	}
	var result struct {
		Object string `json:"object"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", "", fmt.Errorf("解析导出响应失败: %w", err)
	}
	return result.Object, result.URL, nil
}

// --- 通用请求封装 ---
func (c *APIClient) get(path string) (*apiResponse, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *APIClient) post(path string, body interface{}) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(jsonBody)
	}
	req, err := http.NewRequest("POST", c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *APIClient) do(req *http.Request) (*apiResponse, error) {
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if apiResp.Code != http.StatusOK {
		return nil, fmt.Errorf("API 错误: %s", apiResp.Message)
	}
	return &apiResp, nil
}
