package summarizer

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/errors"
)

// DefaultTemplate is the system prompt used when a caller supplies none.
const DefaultTemplate = `
You are an expert content analyst and copywriter. Create a comprehensive summary following this exact structure:

## Quick Overview
Start with a 2-3 sentence description of what this content covers.

## Key Topics Summary
Summarize the content using 5 main topics. Write in a conversational, first-person tone as if explaining to a friend.

## Key Points & Benefits
List the most important points and practical benefits viewers will gain.

## Detailed Summary
Write a complete Summary including:
- Engaging introduction paragraph
- Timestamped sections (if applicable)
- Key takeaways section
- Call-to-action

---
Format your response using clear markdown headers and bullet points. Keep language natural and accessible throughout.`

// Service turns a transcript into generated markdown.
type Service interface {
	Summarize(ctx context.Context, transcript, template string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type service struct {
	client *openai.Client
	config Config
	logger *logrus.Logger
}

func NewService(cfg Config) Service {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4000
	}

	return &service{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logrus.StandardLogger(),
	}
}

// Summarize sends the transcript with the structured prompt to the
// completion model. No retries and no partial output; provider failures are
// wrapped and re-raised.
func (s *service) Summarize(ctx context.Context, transcript, template string) (string, error) {
	const op = "SummarizerService.Summarize"

	if strings.TrimSpace(transcript) == "" {
		return "", errors.InvalidInput(op, nil, "No transcript provided")
	}

	systemPrompt := template
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = strings.TrimSpace(DefaultTemplate)
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	s.logger.WithFields(logrus.Fields{
		"model":            s.config.Model,
		"transcript_chars": len(transcript),
	}).Info("Generating summary")

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Please summarize this transcript:\n\n" + transcript,
			},
		},
		Temperature: float32(s.config.Temperature),
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Timeout(op, err)
		}
		return "", errors.Internal(op, err, "Failed to generate summary: "+err.Error())
	}

	if len(resp.Choices) == 0 {
		return "", errors.Internal(op, nil, "Completion model returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
