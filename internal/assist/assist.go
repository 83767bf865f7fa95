// Package assist proposes chore plans through an OpenAI-compatible chat
// completion endpoint. It is strictly best-effort: the planner validates
// every suggestion and falls back to deterministic selection on any failure,
// so nothing here is load-bearing for correctness.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chorewheel/internal/planner"
)

const systemPrompt = `You assign household chores to members. You receive a JSON
summary of pending task occurrences and members with their recent workload.
Reply with ONLY a JSON array, no prose, where each element is
{"task_id": <id>, "member_id": <id>, "reason": "<short explanation>"}.
Prefer members with lower recent_load and spread work evenly.`

// Config holds assistant configuration from environment variables.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client talks to the chat completion API. It implements planner.Proposer.
type Client struct {
	config Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the client has enough configuration to be used.
func (c *Client) Configured() bool {
	return c.config.BaseURL != "" && c.config.APIKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Propose sends the household summary and parses the returned JSON plan.
func (c *Client) Propose(ctx context.Context, input planner.Input) ([]planner.Proposal, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("assistant not configured")
	}

	summary, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal plan input: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(summary)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	return parseProposals(chat.Choices[0].Message.Content)
}

// parseProposals extracts the JSON array from the model output, tolerating
// code fences and surrounding prose.
func parseProposals(content string) ([]planner.Proposal, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var proposals []planner.Proposal
	if err := json.Unmarshal([]byte(content[start:end+1]), &proposals); err != nil {
		return nil, fmt.Errorf("parse proposals: %w", err)
	}
	return proposals, nil
}
