// Package llm selects the completion provider used for skill augmentation
// and bullet generation. With OPENAI_API_KEY set the OpenAI client is used;
// otherwise a local placeholder reports unavailability and callers fall
// back to deterministic generation.
package llm

import (
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/zip2job/zip2job/internal/common"
	"github.com/zip2job/zip2job/internal/llm/providers"
)

type Provider = providers.Provider

var ErrUnavailable = providers.ErrUnavailable

// NewProvider builds the process-wide provider from the environment.
func NewProvider() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; local fallback only")
		return providers.NewLocalProvider()
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: using custom endpoint", "endpoint", endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			opts = append(opts, option.WithRequestTimeout(timeout))
		} else {
			logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, ignoring", "value", timeoutStr, "error", err)
		}
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: openai provider selected")
	return providers.NewOpenAIProvider(client)
}
