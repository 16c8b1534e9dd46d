package service

import (
	"encoding/json"
	"testing"

	"soul-lifter-go/internal/model"
)

func TestTurnsToMessages_ExpandsPairsInOrder(t *testing.T) {
	turns := []model.ChatTurn{
		{UserInput: "hello", Response: "hi there"},
		{UserInput: "I feel sad", Response: "I hear you."},
	}

	messages := TurnsToMessages(turns)
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}

	want := []model.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
		{Role: "user", Content: "I feel sad"},
		{Role: "assistant", Content: "I hear you."},
	}
	for i, m := range want {
		if messages[i] != m {
			t.Fatalf("message %d mismatch: got %+v, want %+v", i, messages[i], m)
		}
	}
}

func TestTurnsToMessages_EmptyLog(t *testing.T) {
	messages := TurnsToMessages(nil)
	if messages == nil || len(messages) != 0 {
		t.Fatalf("expected empty array export, got %v", messages)
	}
}

func TestExportSerialization_RoundTrip(t *testing.T) {
	turns := []model.ChatTurn{
		{UserInput: "hello", Response: "hi there"},
		{UserInput: "I feel suicidal", Response: "Please reach out for help.\n\n📞 Helpline: 988"},
	}

	// 与 ExportChatLog 相同的序列化路径：展开消息后按缩进 JSON 编码
	want := TurnsToMessages(turns)
	data, err := json.MarshalIndent(want, "", "    ")
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	var got []model.ChatMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("re-parse export: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
	}

	// 空日志的导出产物是 JSON 数组而不是 null
	empty, err := json.MarshalIndent(TurnsToMessages(nil), "", "    ")
	if err != nil {
		t.Fatalf("marshal empty export: %v", err)
	}
	if string(empty) == "null" {
		t.Fatalf("empty export must be a JSON array, got null")
	}
}
