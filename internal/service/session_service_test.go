package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"soul-lifter-go/internal/config"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/pkg/token"
)

// stubGenerateClient 以可预测的方式模拟编码、生成、解码三个接口：
// Encode 把每个字符映射为一个 token ID，Generate 在输入后追加固定回复 token，
// Decode 把 token ID 还原为字符串。
type stubGenerateClient struct {
	replyIDs   []int64
	replyText  string
	lastInput  []int64
	encodeErr  error
	genErr     error
	decodeErr  error
	encodeCnt  int
	generateCt int
}

func newStubGenerateClient() *stubGenerateClient {
	return &stubGenerateClient{
		replyIDs:  []int64{9001, 9002},
		replyText: "I hear you.",
	}
}

func (c *stubGenerateClient) Encode(_ context.Context, text string) ([]int64, error) {
	c.encodeCnt++
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	ids := make([]int64, 0, len(text))
	for _, r := range text {
		ids = append(ids, int64(r))
	}
	return ids, nil
}

func (c *stubGenerateClient) Generate(_ context.Context, inputIDs []int64) ([]int64, error) {
	c.generateCt++
	if c.genErr != nil {
		return nil, c.genErr
	}
	c.lastInput = append([]int64(nil), inputIDs...)
	out := append([]int64(nil), inputIDs...)
	return append(out, c.replyIDs...), nil
}

func (c *stubGenerateClient) Decode(_ context.Context, ids []int64) (string, error) {
	if c.decodeErr != nil {
		return "", c.decodeErr
	}
	if len(ids) != len(c.replyIDs) {
		return "", fmt.Errorf("unexpected decode input length: %d", len(ids))
	}
	return c.replyText, nil
}

const testEOS int64 = 50256

func newTestSessionService(gen *stubGenerateClient) (SessionService, repository.SessionRepository) {
	repo := repository.NewMemorySessionRepository()
	mgr := token.NewSessionTokenManager("test-secret", 1)
	cfg := config.GenerationConfig{MaxLength: 1000, EOSTokenID: testEOS}
	return NewSessionService(repo, gen, mgr, cfg), repo
}

func TestAppendAndGenerate_FirstTurn(t *testing.T) {
	gen := newStubGenerateClient()
	svc, repo := newTestSessionService(gen)
	ctx := context.Background()

	reply, err := svc.AppendAndGenerate(ctx, "s1", "hi")
	if err != nil {
		t.Fatalf("append and generate: %v", err)
	}
	if reply != "I hear you." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	// 首轮输入是编码后的消息加 EOS
	want := []int64{'h', 'i', testEOS}
	if len(gen.lastInput) != len(want) {
		t.Fatalf("unexpected input length: %v", gen.lastInput)
	}
	for i, id := range want {
		if gen.lastInput[i] != id {
			t.Fatalf("unexpected input at %d: %v", i, gen.lastInput)
		}
	}

	// 历史保存的是模型的完整输出序列（输入 + 回复）
	hist, err := repo.GetHistory(ctx, "s1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(hist) != len(want)+len(gen.replyIDs) {
		t.Fatalf("unexpected history length: %d", len(hist))
	}
}

func TestAppendAndGenerate_HistoryAccumulates(t *testing.T) {
	gen := newStubGenerateClient()
	svc, _ := newTestSessionService(gen)
	ctx := context.Background()

	if _, err := svc.AppendAndGenerate(ctx, "s1", "hi"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	firstLen := len(gen.lastInput)

	if _, err := svc.AppendAndGenerate(ctx, "s1", "ok"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	// 第二轮输入 = 第一轮完整输出 + 新消息编码 + EOS
	wantLen := firstLen + len(gen.replyIDs) + 2 + 1
	if len(gen.lastInput) != wantLen {
		t.Fatalf("expected input length %d, got %d", wantLen, len(gen.lastInput))
	}
	// 序列以第一轮的输入为前缀
	if gen.lastInput[0] != 'h' || gen.lastInput[1] != 'i' || gen.lastInput[2] != testEOS {
		t.Fatalf("history prefix lost: %v", gen.lastInput[:3])
	}
}

func TestAppendAndGenerate_SessionsAreIsolated(t *testing.T) {
	gen := newStubGenerateClient()
	svc, _ := newTestSessionService(gen)
	ctx := context.Background()

	if _, err := svc.AppendAndGenerate(ctx, "s1", "hello"); err != nil {
		t.Fatalf("s1 turn: %v", err)
	}
	if _, err := svc.AppendAndGenerate(ctx, "s2", "yo"); err != nil {
		t.Fatalf("s2 turn: %v", err)
	}

	// s2 的输入不包含 s1 的历史
	if len(gen.lastInput) != 2+1 {
		t.Fatalf("expected isolated session input, got %v", gen.lastInput)
	}
}

func TestAppendAndGenerate_TrimsOldestContext(t *testing.T) {
	gen := newStubGenerateClient()
	repo := repository.NewMemorySessionRepository()
	mgr := token.NewSessionTokenManager("test-secret", 1)
	cfg := config.GenerationConfig{MaxLength: replyReserveTokens + 10, EOSTokenID: testEOS}
	svc := NewSessionService(repo, gen, mgr, cfg)
	ctx := context.Background()

	// 预置一段超出预算的历史
	longHistory := make([]int64, 50)
	for i := range longHistory {
		longHistory[i] = int64(i)
	}
	if err := repo.SetHistory(ctx, "s1", longHistory); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	if _, err := svc.AppendAndGenerate(ctx, "s1", "hi"); err != nil {
		t.Fatalf("append and generate: %v", err)
	}

	if len(gen.lastInput) != 10 {
		t.Fatalf("expected input trimmed to budget 10, got %d", len(gen.lastInput))
	}
	// 丢弃的是最早的上下文，最新输入必须保留
	if gen.lastInput[len(gen.lastInput)-1] != testEOS {
		t.Fatalf("newest tokens lost after trim: %v", gen.lastInput)
	}
}

func TestAppendAndGenerate_ResetDropsHistory(t *testing.T) {
	gen := newStubGenerateClient()
	svc, _ := newTestSessionService(gen)
	ctx := context.Background()

	if _, err := svc.AppendAndGenerate(ctx, "s1", "hi"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if err := svc.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	// 重置幂等
	if err := svc.Reset(ctx, "s1"); err != nil {
		t.Fatalf("second reset: %v", err)
	}

	if _, err := svc.AppendAndGenerate(ctx, "s1", "hi"); err != nil {
		t.Fatalf("turn after reset: %v", err)
	}
	// 重置后生成器只收到新消息，与全新会话一致
	if len(gen.lastInput) != 2+1 {
		t.Fatalf("expected fresh input after reset, got %v", gen.lastInput)
	}
}

func TestAppendAndGenerate_WrapsDelegateFailures(t *testing.T) {
	gen := newStubGenerateClient()
	gen.genErr = errors.New("inference backend down")
	svc, _ := newTestSessionService(gen)

	_, err := svc.AppendAndGenerate(context.Background(), "s1", "hi")
	if err == nil {
		t.Fatalf("expected error")
	}
	var delegateErr *DelegateError
	if !errors.As(err, &delegateErr) {
		t.Fatalf("expected DelegateError, got %T", err)
	}
	if delegateErr.Delegate != "generation" {
		t.Fatalf("unexpected delegate: %q", delegateErr.Delegate)
	}
}

func TestAppendAndGenerate_TimeoutIsDetectable(t *testing.T) {
	gen := newStubGenerateClient()
	gen.genErr = context.DeadlineExceeded
	svc, _ := newTestSessionService(gen)

	_, err := svc.AppendAndGenerate(context.Background(), "s1", "hi")
	var delegateErr *DelegateError
	if !errors.As(err, &delegateErr) {
		t.Fatalf("expected DelegateError, got %v", err)
	}
	if !delegateErr.IsTimeout() {
		t.Fatalf("expected timeout to be detected")
	}
}

func TestNewSession_TokenRoundTrip(t *testing.T) {
	gen := newStubGenerateClient()
	svc, _ := newTestSessionService(gen)

	sessionID, tokenString, err := svc.NewSession(context.Background())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if sessionID == "" || tokenString == "" {
		t.Fatalf("expected non-empty session id and token")
	}

	mgr := token.NewSessionTokenManager("test-secret", 1)
	claims, err := mgr.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.SessionID != sessionID {
		t.Fatalf("token carries wrong session id: %q != %q", claims.SessionID, sessionID)
	}
}
