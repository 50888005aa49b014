package oracle

import (
	"fmt"
	"strings"

	"github.com/epanichev/sheetcheck/internal/observability"
)

// New builds an oracle for the requested provider mode.
// "auto" picks the OpenAI-compatible client when an API key is present and
// falls back to the deterministic mock otherwise.
func New(mode string, cfg Config, metrics *observability.Metrics) (Oracle, string, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAI(cfg, metrics), "openai", nil
		}
		return NewMock(), "mock", nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, "", fmt.Errorf("ORACLE_PROVIDER=openai but ORACLE_API_KEY is not set")
		}
		return NewOpenAI(cfg, metrics), "openai", nil
	case "mock":
		return NewMock(), "mock", nil
	default:
		return nil, "", fmt.Errorf("unsupported oracle provider %q (expected auto|openai|mock)", mode)
	}
}
