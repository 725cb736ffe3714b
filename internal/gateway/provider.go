package gateway

import "fmt"

// Provider selects one of the supported inference backends. All provider
// branching happens inside this package; callers only carry the tag.
type Provider string

const (
	Ollama   Provider = "ollama"
	LMStudio Provider = "lmstudio"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case Ollama:
		return Ollama, nil
	case LMStudio:
		return LMStudio, nil
	default:
		return "", fmt.Errorf("unsupported model provider: %q", s)
	}
}

func (p Provider) String() string { return string(p) }
