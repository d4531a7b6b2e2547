package model

import "time"

// ChatMessage 代表对话记录中的单条消息，追加后不可变。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// 对话模式：questions 苏格拉底提问，feedback 结构化点评。
const (
	ChatModeQuestions = "questions"
	ChatModeFeedback  = "feedback"
)
