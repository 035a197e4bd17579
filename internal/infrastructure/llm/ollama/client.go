package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/resilience"
)

type Options struct {
	Timeout            time.Duration
	MaxAnswerTokens    int
	ResilienceExecutor *resilience.Executor
}

// Client asks an Ollama server for a category label via /api/generate.
type Client struct {
	baseURL   string
	model     string
	maxTokens int
	http      httpDoer
	executor  *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := options.MaxAnswerTokens
	if maxTokens <= 0 {
		maxTokens = 16
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		http:      newHTTPClient(timeout),
		executor:  options.ResilienceExecutor,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// GenerateCategory sends the prompt with temperature 0 and returns the raw answer.
func (c *Client) GenerateCategory(ctx context.Context, prompt string) (string, error) {
	if c.baseURL == "" || c.model == "" {
		return "", domain.WrapError(domain.ErrEngineUnavailable, "ollama generate", errors.New("ollama is not configured"))
	}

	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: 0, NumPredict: c.maxTokens},
	}
	answer, err := resilience.Do(ctx, c.executor, resilience.OpOllamaGenerate, func(callCtx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(callCtx, "/api/generate", req, &response, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return answer, nil
}
