// Package model 定义了与存储结构对应的 Go 结构体。
package model

// EsTurnDocument 定义了存储在 Elasticsearch 中的对话轮次文档结构。
type EsTurnDocument struct {
	TurnID     string  `json:"turn_id"` // 唯一标识
	SessionID  string  `json:"session_id"`
	UserInput  string  `json:"user_input"`
	Response   string  `json:"response"`
	Emotion    string  `json:"emotion"`
	Score      float64 `json:"score"`
	KeywordHit bool    `json:"keyword_hit"`
	Timestamp  string  `json:"timestamp"`
}

// EmotionCountDTO 定义了返回给仪表盘的情绪统计结构.
type EmotionCountDTO struct {
	Emotion string `json:"emotion"`
	Count   int64  `json:"count"`
}
