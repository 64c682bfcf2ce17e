package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ocrqa/internal/ai"
)

// ErrTranslationFailed wraps any failure of the underlying language-model
// call. Callers decide whether to abort or continue without translation.
var ErrTranslationFailed = errors.New("translation failed")

type completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type Config struct {
	TargetLanguage string
	MaxInputChars  int
}

// Translator converts text to the pivot language through the chat client.
// Input is truncated to MaxInputChars runes before the call so a huge
// transcript cannot produce an unbounded prompt. Text already in the target
// language comes back semantically unchanged.
type Translator struct {
	client         completer
	targetLanguage string
	maxInputChars  int
}

func NewTranslator(client completer, cfg Config) (*Translator, error) {
	if cfg.MaxInputChars <= 0 {
		return nil, fmt.Errorf("max input chars must be positive, got %d", cfg.MaxInputChars)
	}
	target := strings.TrimSpace(cfg.TargetLanguage)
	if target == "" {
		return nil, fmt.Errorf("target language is required")
	}
	return &Translator{
		client:         client,
		targetLanguage: target,
		maxInputChars:  cfg.MaxInputChars,
	}, nil
}

func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	runes := []rune(text)
	if len(runes) > t.maxInputChars {
		text = string(runes[:t.maxInputChars])
	}

	system := fmt.Sprintf(
		"You are a translator. Translate the user's text to %s. "+
			"If the text is already in %s, return it unchanged. "+
			"Return only the translated text, nothing else.",
		t.targetLanguage, t.targetLanguage,
	)
	messages := []ai.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	}

	translated, err := t.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	return strings.TrimSpace(translated), nil
}
