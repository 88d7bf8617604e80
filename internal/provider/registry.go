package provider

import (
	"context"
	"fmt"

	"github.com/cleoai/cleo/internal/config"
	"github.com/cleoai/cleo/internal/logging"
)

// New builds the configured provider client. The returned client may also
// implement io.Closer; callers should close it on shutdown when it does.
func New(ctx context.Context, cfg config.ProviderConfig, log *logging.Logger) (Client, error) {
	sub := log.Sub("provider")

	switch cfg.Name {
	case "openai", "":
		sub.Info().Str("provider", "openai").Str("model", cfg.Model).Msg("using OpenAI provider")
		return NewOpenAIClient(OpenAIOptions{
			APIKey:      cfg.APIKey,
			OrgID:       cfg.OrgID,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			ImageModel:  cfg.ImageModel,
			SpeechModel: cfg.SpeechModel,
			Voice:       cfg.Voice,
		}), nil
	case "gemini":
		sub.Info().Str("provider", "gemini").Str("model", cfg.Model).Msg("using Gemini provider")
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
