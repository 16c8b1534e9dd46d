package model

import "time"

// ArchivedTurn 代表持久化到 MySQL 的一次问答轮次。
type ArchivedTurn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TurnID     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"turnId"`
	SessionID  string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	UserInput  string    `gorm:"type:text;not null" json:"userInput"`
	Response   string    `gorm:"type:text;not null" json:"response"`
	Emotion    string    `gorm:"type:varchar(32)" json:"emotion"`
	Score      float64   `json:"score"`
	KeywordHit bool      `json:"keywordHit"`
	Timestamp  string    `gorm:"type:varchar(64)" json:"timestamp"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (ArchivedTurn) TableName() string {
	return "archived_turns"
}
