package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quillworks/traduit/pkg/types"
)

const defaultTimeout = 20 * time.Second

// HTTP translates through a LibreTranslate-compatible endpoint.
type HTTP struct {
	name     string
	endpoint string
	apiKey   string
	client   *resty.Client
}

// NewHTTP builds the HTTP engine from its config. The engine name defaults
// to "http" and becomes the engine column of every cell it fills.
func NewHTTP(cfg types.EngineConfig) *HTTP {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "http"
	}
	return &HTTP{
		name:     name,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		client:   resty.New().SetTimeout(timeout),
	}
}

func (h *HTTP) Name() string { return h.name }

// Translate posts one text to the /translate endpoint. Errors are returned
// per call; batch jobs count them as skips rather than aborting.
func (h *HTTP) Translate(ctx context.Context, text, from, to string) (string, error) {
	var result struct {
		TranslatedText string `json:"translatedText"`
		Error          string `json:"error"`
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"q":       text,
			"source":  from,
			"target":  to,
			"format":  "text",
			"api_key": h.apiKey,
		}).
		SetResult(&result).
		SetError(&result).
		Post(h.endpoint + "/translate")
	if err != nil {
		return "", fmt.Errorf("engine %s: translate %s->%s: %w", h.name, from, to, err)
	}
	if resp.IsError() {
		msg := result.Error
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("engine %s: translate %s->%s: %s", h.name, from, to, msg)
	}
	return result.TranslatedText, nil
}
