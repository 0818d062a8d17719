package reformat

import (
	"context"
	"fmt"
	"os"

	"github.com/chaz8081/godictate/internal/config"
)

// grammarPrompt instructs the model to clean the text up without changing
// its meaning.
const grammarPrompt = "Fix the grammar, spelling and punctuation of the " +
	"following text. Keep the original meaning, tone and language. Return " +
	"only the corrected text with no commentary."

// Reformatter sends text to a language model and returns the cleaned-up
// version.
type Reformatter interface {
	Reformat(ctx context.Context, text string) (string, error)
}

// New creates a Reformatter for the configured backend. The API credential
// is resolved from the configured environment variable; an absent
// credential means the capability is unavailable and is a constructor
// error.
func New(cfg config.ReformatConfig) (Reformatter, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("reformat: %s is not set", cfg.APIKeyEnv)
	}

	switch cfg.Backend {
	case "gemini", "":
		return newGeminiReformatter(cfg.Model, key), nil
	case "openai":
		return newOpenAIReformatter(cfg.Model, key), nil
	default:
		return nil, fmt.Errorf("reformat: unknown backend %q (supported: gemini, openai)", cfg.Backend)
	}
}
