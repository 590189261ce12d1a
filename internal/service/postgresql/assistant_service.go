package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	entity "book-market/internal/domain"
	repo "book-market/internal/repository/postgresql"

	openai "github.com/sashabaranov/go-openai"
)

var ErrAssistantUnavailable = fmt.Errorf("assistant not configured: %w", entity.ErrConflict)

// AssistantService answers reader questions and recommends titles from the
// catalog through an LLM. It is optional: without an API key every call
// fails with ErrAssistantUnavailable and the rest of the system is
// unaffected.
type AssistantService struct {
	client   *openai.Client
	model    string
	bookRepo repo.BookRepository
}

func NewAssistantService(bookRepo repo.BookRepository) *AssistantService {
	s := &AssistantService{bookRepo: bookRepo}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return s
	}
	s.model = os.Getenv("OPENAI_MODEL")
	if s.model == "" {
		s.model = "gpt-4o-mini"
	}
	s.client = openai.NewClient(apiKey)
	return s
}

func (s *AssistantService) Enabled() bool {
	return s.client != nil
}

// Chat sends the user's question with a catalog sample as grounding. The
// sample keeps the prompt small; the assistant is a convenience, not a
// search engine.
func (s *AssistantService) Chat(ctx context.Context, question string) (string, error) {
	if s.client == nil {
		return "", ErrAssistantUnavailable
	}

	books, err := s.bookRepo.ListBooks(entity.BookFilter{Limit: 25})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("You are the reading assistant of a community library. Recommend only titles from this catalog:\n")
	for _, b := range books {
		fmt.Fprintf(&sb, "- %q by %s (%s)\n", b.Title, b.Author, b.Category)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sb.String()},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
