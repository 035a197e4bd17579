package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/resilience"
)

const (
	defaultChatModel       = "gpt-4o-mini"
	defaultTranscribeModel = "whisper-1"
)

type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
	RequestTimeout  time.Duration
}

// Client serves both the generative category fallback and speech
// transcription. Retries are left to the resilience executor.
type Client struct {
	api             openai.Client
	configured      bool
	chatModel       string
	transcribeModel string
	executor        *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = defaultTranscribeModel
	}

	return &Client{
		api:             openai.NewClient(opts...),
		configured:      strings.TrimSpace(cfg.APIKey) != "",
		chatModel:       chatModel,
		transcribeModel: transcribeModel,
		executor:        executor,
	}
}

func (c *Client) GenerateCategory(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", errNotConfigured("openai chat")
	}

	resp, err := resilience.Do(ctx, c.executor, resilience.OpOpenAIChat, func(callCtx context.Context) (*openai.ChatCompletion, error) {
		return c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.chatModel),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0),
			MaxTokens:   openai.Int(16),
		})
	}, classifyOpenAIError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("openai chat", err)
	}
	return completionText(resp), nil
}

func (c *Client) Transcribe(ctx context.Context, filename string, media []byte) (string, error) {
	if !c.configured {
		return "", errNotConfigured("openai transcribe")
	}

	resp, err := resilience.Do(ctx, c.executor, resilience.OpOpenAITranscribe, func(callCtx context.Context) (*openai.Transcription, error) {
		return c.api.Audio.Transcriptions.New(callCtx, openai.AudioTranscriptionNewParams{
			File:  openai.File(bytes.NewReader(media), filename, "application/octet-stream"),
			Model: openai.AudioModel(c.transcribeModel),
		})
	}, classifyOpenAIError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("openai transcribe", err)
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Text), nil
}

func completionText(resp *openai.ChatCompletion) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func errNotConfigured(op string) error {
	return domain.WrapError(domain.ErrEngineUnavailable, op, errors.New("OPENAI_API_KEY is not set"))
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{}
		}
	}
	return resilience.ClassifyTransient(err)
}

func wrapTemporaryIfNeeded(op string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOpenAIError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return domain.WrapError(domain.ErrEngineUnavailable, op, fmt.Errorf("rejected credentials: %w", err))
	}
	return err
}
