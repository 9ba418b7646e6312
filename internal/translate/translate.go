package translate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// MaxTextLength caps the length of text accepted for translation.
const MaxTextLength = 2000

// providerTimeout is the per-provider timeout applied uniformly by the chain.
const providerTimeout = 5 * time.Second

// Provider translates text into the target language. Implementations wrap a
// single external translation API.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Translator runs an ordered list of providers and falls back to a
// deterministic placeholder when all of them fail. A translation failure is
// never surfaced to the caller of Translate; delivering something to the
// other participant outranks translation fidelity.
type Translator struct {
	providers []Provider
}

// NewTranslator builds a translator over the given provider chain.
// A translator with no providers always produces the placeholder form.
func NewTranslator(providers ...Provider) *Translator {
	return &Translator{providers: providers}
}

// Translate returns text in the target language. Empty or whitespace-only
// input returns "" without calling any provider; identical source and target
// languages return the input unchanged.
func (t *Translator) Translate(ctx context.Context, text, targetLang, sourceLang string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if sourceLang == targetLang {
		return text
	}

	for _, p := range t.providers {
		callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
		translated, err := p.Translate(callCtx, text, targetLang, sourceLang)
		cancel()
		if err != nil {
			log.Printf("Translation provider %s failed: %v", p.Name(), err)
			continue
		}
		if strings.TrimSpace(translated) != "" {
			return translated
		}
	}

	return Placeholder(text, targetLang)
}

// Placeholder is the deterministic last-resort transform: the original text
// marked with the target language name.
func Placeholder(text, targetLang string) string {
	return fmt.Sprintf("[%s] %s", LanguageName(targetLang), text)
}
