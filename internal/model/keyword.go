package model

// KeywordEntry 代表关键词应答表中的一行。
// keyword 在加载时统一小写并去除首尾空白；重复关键词只保留首次出现的行。
type KeywordEntry struct {
	Keyword  string `json:"keyword"`
	Response string `json:"response"`
	Helpline string `json:"helpline"`
}
