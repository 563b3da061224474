package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cardionote-be/internal/pkg/logger"
)

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	geminiURL     = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	serperURL     = "https://google.serper.dev/search"

	defaultChatModel = "openai/gpt-4o-mini"
)

// ProxyResult carries a provider's response through unchanged: the
// client receives the provider's JSON verbatim with the provider's
// status code.
type ProxyResult struct {
	Status int
	Body   []byte
}

type IAssistService interface {
	// Chat, Interpret, and Search forward the request body to the
	// provider with the server-held API key injected.
	Chat(ctx context.Context, body []byte) (*ProxyResult, error)
	Interpret(ctx context.Context, body []byte) (*ProxyResult, error)
	Search(ctx context.Context, body []byte) (*ProxyResult, error)

	// ChatCompletion and GenerateText are the pipeline-facing helpers:
	// one prompt in, the provider's text out.
	ChatCompletion(ctx context.Context, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type assistService struct {
	httpClient    *http.Client
	openRouterKey string
	geminiKey     string
	serperKey     string
	logger        logger.ILogger
}

func NewAssistService(openRouterKey, geminiKey, serperKey string, log logger.ILogger) IAssistService {
	return &assistService{
		httpClient:    &http.Client{},
		openRouterKey: openRouterKey,
		geminiKey:     geminiKey,
		serperKey:     serperKey,
		logger:        log,
	}
}

func (s *assistService) Chat(ctx context.Context, body []byte) (*ProxyResult, error) {
	return s.forward(ctx, openRouterURL, body, map[string]string{
		"Authorization": "Bearer " + s.openRouterKey,
	})
}

func (s *assistService) Interpret(ctx context.Context, body []byte) (*ProxyResult, error) {
	return s.forward(ctx, geminiURL, body, map[string]string{
		"x-goog-api-key": s.geminiKey,
	})
}

func (s *assistService) Search(ctx context.Context, body []byte) (*ProxyResult, error) {
	return s.forward(ctx, serperURL, body, map[string]string{
		"X-API-KEY": s.serperKey,
	})
}

func (s *assistService) forward(ctx context.Context, url string, body []byte, headers map[string]string) (*ProxyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("AssistService", "Provider request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &ProxyResult{Status: resp.StatusCode, Body: respBody}, nil
}

func (s *assistService) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model": defaultChatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}

	result, err := s.Chat(ctx, payload)
	if err != nil {
		return "", err
	}
	if result.Status < 200 || result.Status >= 300 {
		return "", fmt.Errorf("chat provider returned status %d", result.Status)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(result.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (s *assistService) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	result, err := s.Interpret(ctx, payload)
	if err != nil {
		return "", err
	}
	if result.Status < 200 || result.Status >= 300 {
		return "", fmt.Errorf("generation provider returned status %d", result.Status)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(result.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse generation response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generation provider returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
