// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// TurnArchiveTask 表示一条待归档的对话轮次任务。
type TurnArchiveTask struct {
	TurnID     string  `json:"turn_id"`
	SessionID  string  `json:"session_id"`
	Timestamp  string  `json:"timestamp"`
	UserInput  string  `json:"user_input"`
	Response   string  `json:"response"`
	Emotion    string  `json:"emotion"`
	Score      float64 `json:"score"`
	KeywordHit bool    `json:"keyword_hit"`
}
