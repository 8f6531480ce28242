// Package gemini はGoogle Gemini APIを使用したテキスト生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"evolve_backend/internal/feature/assistant/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// ErrEmptyResponse はモデルが本文を返さなかった場合のエラーです。
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Generator はGoogle Gemini APIを使用して応答文を生成します。
type Generator struct {
	client *genai.Client
	model  string
}

// GeneratorがTextGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.TextGenerator = (*Generator)(nil)

// Config はGeneratorの設定です。
type Config struct {
	// APIKey が空の場合はADCを使用します（GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION）。
	APIKey string
	Model  string
	// HTTPClient はタイムアウト設定済みのクライアントです。nilの場合はSDKの既定値を使用します。
	HTTPClient *http.Client
	// BaseURL はAPIエンドポイントの上書きです。テストやプロキシ経由の接続で使用します。
	BaseURL string
}

// NewGenerator はGeneratorの新しいインスタンスを生成します。
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	cc := &genai.ClientConfig{
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}, nil
}

// Generate はプロンプトに対する応答文を生成します。
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
