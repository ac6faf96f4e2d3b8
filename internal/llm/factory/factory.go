// Package factory resolves a logical provider name and a credential to a
// constructed LLM client. Resolution is pure: no network calls are made.
package factory

import (
	"fmt"
	"strings"

	"github.com/andreas2301/genericllmadapter/internal/config"
	"github.com/andreas2301/genericllmadapter/internal/core"
	"github.com/andreas2301/genericllmadapter/internal/llm"
	"github.com/andreas2301/genericllmadapter/internal/llm/huggingface"
	"github.com/andreas2301/genericllmadapter/internal/llm/openaicompat"
)

// Provider is the closed enumeration of supported backends.
type Provider string

const (
	ProviderOpenAI      Provider = "OPENAI"
	ProviderDeepSeek    Provider = "DEEPSEEK"
	ProviderLocalVLLM   Provider = "LOCAL_VLLM"
	ProviderHuggingFace Provider = "HUGGINGFACE"
)

// Providers lists the supported backends in listing order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderDeepSeek, ProviderLocalVLLM, ProviderHuggingFace}
}

// localPlaceholderKey is substituted for the local backend, which does not
// require authentication but still speaks a bearer-auth dialect.
const localPlaceholderKey = "not-needed"

// ParseProvider matches a name case-insensitively against the enumeration.
func ParseProvider(name string) (Provider, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrProviderNameEmpty
	}
	switch p := Provider(strings.ToUpper(strings.TrimSpace(name))); p {
	case ProviderOpenAI, ProviderDeepSeek, ProviderLocalVLLM, ProviderHuggingFace:
		return p, nil
	default:
		return "", core.WrapError(core.ErrProviderUnsupported, fmt.Errorf("%s", name))
	}
}

// RequiresCredential reports whether the provider needs a user-supplied key.
func (p Provider) RequiresCredential() bool {
	return p != ProviderLocalVLLM
}

// Factory builds clients from immutable endpoint configuration.
type Factory struct {
	cfg config.ProvidersConfig
}

// New creates a factory over the configured provider endpoints.
func New(cfg config.ProvidersConfig) *Factory {
	return &Factory{cfg: cfg}
}

// Resolve maps a provider name and credential to a constructed client.
func (f *Factory) Resolve(name, credential string) (llm.Client, error) {
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	if provider.RequiresCredential() && strings.TrimSpace(credential) == "" {
		return nil, core.WrapError(core.ErrCredentialMissing, fmt.Errorf("provider %s", provider))
	}

	switch provider {
	case ProviderOpenAI:
		return openaicompat.New("openai", f.cfg.OpenAI.BaseURL, f.cfg.OpenAI.Model, credential)
	case ProviderDeepSeek:
		return openaicompat.New("deepseek", f.cfg.DeepSeek.BaseURL, f.cfg.DeepSeek.Model, credential)
	case ProviderLocalVLLM:
		if strings.TrimSpace(credential) == "" {
			credential = localPlaceholderKey
		}
		return openaicompat.New("local_vllm", f.cfg.LocalVLLM.BaseURL, f.cfg.LocalVLLM.Model, credential)
	case ProviderHuggingFace:
		return huggingface.New(f.cfg.HuggingFace.BaseURL, f.cfg.HuggingFace.Model, credential)
	default:
		// unreachable: ParseProvider is exhaustive over the enumeration
		return nil, core.WrapError(core.ErrProviderUnsupported, fmt.Errorf("%s", provider))
	}
}
