// Package model 包含了应用的数据模型定义。
package model

// ChatMessage 代表对话中的一条消息，与导出产物的结构一致。
type ChatMessage struct {
	Role    string `json:"role"` // "user" 或 "assistant"
	Content string `json:"content"`
}

// ChatTurn 代表一次完整的问答轮次，追加进会话日志后不再修改。
type ChatTurn struct {
	Timestamp string  `json:"timestamp"`
	UserInput string  `json:"user_input"`
	Response  string  `json:"response"`
	Emotion   string  `json:"emotion"`
	Score     float64 `json:"score"`
}

// ChatRequest 定义了 /chat 接口的请求体。
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse 定义了 /chat 接口的响应体。
type ChatResponse struct {
	Response string  `json:"response"`
	Emotion  string  `json:"emotion"`
	Score    float64 `json:"score"`
}
