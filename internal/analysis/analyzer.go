// Package analysis sends email threads to the language model and carves the
// structured reply into action items.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Model settings used for every analysis request
const (
	Model       = openai.GPT4o
	Temperature = float32(0.3)
	MaxTokens   = 1000
)

// SystemPrompt instructs the model to answer in the three-section layout the
// parser expects.
const SystemPrompt = `You are an expert email analyst. Analyze the provided email thread and extract:
1. A concise summary of the email thread (2-3 sentences)
2. Specific action items for Eduardo Mangarelli (if any are mentioned or implied)
3. A list of all participants mentioned in the thread

Format your response exactly as follows:
SUMMARY:
[Your concise summary here]

ACTION ITEMS FOR EDUARDO MANGARELLI:
- [Action item 1]
- [Action item 2]
(or "No specific action items identified" if none)

PARTICIPANTS:
- [Participant 1]
- [Participant 2]
`

// ErrEmptyThread is returned before any network call when the thread is blank
var ErrEmptyThread = errors.New("please paste an email thread to process")

// RequestError is the single failure kind for the model round trip. Network,
// authentication, quota and malformed replies all end up here.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ChatCompleter is the part of the OpenAI client the analyzer needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (*openai.ChatCompletionResponse, error)
}

// Analyzer runs email threads through the model
type Analyzer struct {
	client ChatCompleter
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer backed by client
func NewAnalyzer(client ChatCompleter, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// Analyze sends the thread to the model and returns the reply text unmodified
func (a *Analyzer) Analyze(ctx context.Context, threadText string) (string, error) {
	threadText = strings.TrimSpace(threadText)
	if threadText == "" {
		return "", ErrEmptyThread
	}

	start := time.Now()
	a.logger.Info().Int("thread_chars", len(threadText)).Msg("Analyzing email thread")

	resp, err := a.client.CreateChatCompletion(ctx, Model, BuildMessages(threadText), MaxTokens, Temperature)
	if err != nil {
		a.logger.Error().Err(err).Dur("latency", time.Since(start)).Msg("Analysis request failed")
		return "", &RequestError{Err: err}
	}

	if len(resp.Choices) == 0 {
		a.logger.Error().Msg("Model returned no choices")
		return "", &RequestError{Err: errors.New("no response from model")}
	}

	reply := resp.Choices[0].Message.Content
	if reply == "" {
		a.logger.Error().Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("Model returned empty content")
		return "", &RequestError{Err: errors.New("empty response from model")}
	}

	a.logger.Info().
		Int("reply_chars", len(reply)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("latency", time.Since(start)).
		Msg("Analysis complete")

	return reply, nil
}

// BuildMessages returns the system and user messages for a thread
func BuildMessages(threadText string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: "Email thread:\n\n" + threadText,
		},
	}
}
