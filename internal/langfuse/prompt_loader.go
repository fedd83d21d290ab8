package langfuse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
)

// PromptConfig names a managed prompt and where to cache it.
type PromptConfig struct {
	Name  string
	Label string
	// CachePath keeps the last fetched prompt for when Langfuse is down.
	CachePath string
}

var errDisabled = errors.New("langfuse integration disabled")

// LoadPrompt resolves a prompt in order: Langfuse, the local cache, then
// fallback. It only fails when all three are empty.
func LoadPrompt(ctx context.Context, cfg Config, prompt PromptConfig, fallback string) (string, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	if prompt.Name != "" {
		text, err := fetchPrompt(ctx, cfg, prompt)
		switch {
		case err == nil:
			if err := cachePrompt(prompt.CachePath, text); err != nil {
				log.Warn("failed to cache prompt", "prompt", prompt.Name, "error", err)
			}
			return text, nil
		case !errors.Is(err, errDisabled):
			log.Warn("prompt fetch failed, using fallback", "prompt", prompt.Name, "error", err)
		}
	}

	if prompt.CachePath != "" {
		if data, err := os.ReadFile(prompt.CachePath); err == nil && len(data) > 0 {
			return string(data), nil
		}
	}

	if strings.TrimSpace(fallback) == "" {
		return "", fmt.Errorf("prompt %q unavailable and no fallback given", prompt.Name)
	}
	return fallback, nil
}

func fetchPrompt(ctx context.Context, cfg Config, prompt PromptConfig) (string, error) {
	if !cfg.Enabled() {
		return "", errDisabled
	}

	u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid LANGFUSE_BASE_URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/public/v2/prompts/" + url.PathEscape(prompt.Name)
	if prompt.Label != "" {
		q := u.Query()
		q.Set("label", prompt.Label)
		u.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create prompt request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.PublicKey, cfg.SecretKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call prompt API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("prompt API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Type   string          `json:"type"`
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode prompt response: %w", err)
	}

	switch payload.Type {
	case "", "text":
		var text string
		if err := json.Unmarshal(payload.Prompt, &text); err != nil {
			return "", fmt.Errorf("parse text prompt: %w", err)
		}
		return text, nil
	case "chat":
		var messages []chatMessage
		if err := json.Unmarshal(payload.Prompt, &messages); err != nil {
			return "", fmt.Errorf("parse chat prompt: %w", err)
		}
		return joinSystemMessages(messages), nil
	default:
		return "", fmt.Errorf("unsupported prompt type %q", payload.Type)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// joinSystemMessages keeps system messages only; the user message is built
// from the profile at request time.
func joinSystemMessages(messages []chatMessage) string {
	var parts []string
	for _, m := range messages {
		if m.Role == "system" && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func cachePrompt(path, text string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text), 0o600)
}
