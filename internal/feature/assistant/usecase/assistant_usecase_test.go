package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"evolve_backend/internal/feature/user/domain"
)

// mockTextGenerator はTextGeneratorインターフェースのモック実装です。
type mockTextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Calls        int
	LastPrompt   string
}

func (m *mockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "reply", nil
}

// mockRateLimiter はRateLimiterInterfaceのモック実装です。
type mockRateLimiter struct {
	err   error
	Calls int
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.Calls++
	return m.err
}

// TestAssistantUsecase_Chat はChatの各種シナリオをテーブル駆動テストで検証します。
func TestAssistantUsecase_Chat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prompt     string
		genErr     error
		wantReply  string
		wantErr    error
		wantCalls  int
		wantPrompt string
	}{
		{name: "success", prompt: "  How do I say hello?  ", wantReply: "reply", wantCalls: 1, wantPrompt: "How do I say hello?"},
		{name: "empty prompt", prompt: "   ", wantErr: domain.ErrValidation},
		{name: "prompt at the limit", prompt: strings.Repeat("あ", MaxPromptLength), wantReply: "reply", wantCalls: 1, wantPrompt: strings.Repeat("あ", MaxPromptLength)},
		{name: "prompt over the limit", prompt: strings.Repeat("a", MaxPromptLength+1), wantErr: domain.ErrValidation},
		{name: "upstream failure", prompt: "hi", genErr: errors.New("503 unavailable"), wantErr: domain.ErrUpstreamUnavailable, wantCalls: 1, wantPrompt: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &mockTextGenerator{}
			if tt.genErr != nil {
				gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) { return "", tt.genErr }
			}
			uc := NewAssistantUsecase(gen, nil)

			reply, err := uc.Chat(context.Background(), tt.prompt)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantReply, reply)
			assert.Equal(t, tt.wantCalls, gen.Calls)
			assert.Equal(t, tt.wantPrompt, gen.LastPrompt)
		})
	}
}

// TestAssistantUsecase_RateLimit はレート制限の待機が失敗した場合に外部APIを呼ばないことを検証します。
func TestAssistantUsecase_RateLimit(t *testing.T) {
	t.Parallel()

	t.Run("waits before calling upstream", func(t *testing.T) {
		t.Parallel()

		gen := &mockTextGenerator{}
		rl := &mockRateLimiter{}
		uc := NewAssistantUsecase(gen, rl)

		_, err := uc.Chat(context.Background(), "hi")

		assert.NoError(t, err)
		assert.Equal(t, 1, rl.Calls)
		assert.Equal(t, 1, gen.Calls)
	})

	t.Run("wait failure skips upstream", func(t *testing.T) {
		t.Parallel()

		gen := &mockTextGenerator{}
		rl := &mockRateLimiter{err: context.DeadlineExceeded}
		uc := NewAssistantUsecase(gen, rl)

		_, err := uc.Chat(context.Background(), "hi")

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, gen.Calls)
	})

	t.Run("invalid prompt does not consume a token", func(t *testing.T) {
		t.Parallel()

		rl := &mockRateLimiter{}
		uc := NewAssistantUsecase(&mockTextGenerator{}, rl)

		_, err := uc.Chat(context.Background(), "  ")

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, rl.Calls)
	})
}
