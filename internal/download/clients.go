package download

import (
	"fmt"

	"github.com/ytget/audio-bot/internal/model"
)

// ProviderClients holds the adapters built at startup. The YouTube adapter
// is always present; Yandex Music is optional and depends on a token.
type ProviderClients struct {
	youtube Adapter
	yandex  Adapter
}

// NewProviderClients bundles the adapters. yandex may be nil.
func NewProviderClients(youtube, yandex Adapter) *ProviderClients {
	return &ProviderClients{youtube: youtube, yandex: yandex}
}

// YouTube returns the YouTube adapter
func (p *ProviderClients) YouTube() Adapter {
	return p.youtube
}

// Yandex returns the Yandex Music adapter and whether it is configured
func (p *ProviderClients) Yandex() (Adapter, bool) {
	return p.yandex, p.yandex != nil
}

// For returns the adapter serving provider
func (p *ProviderClients) For(provider model.Provider) (Adapter, error) {
	switch provider {
	case model.ProviderYouTube:
		if p.youtube == nil {
			return nil, model.NewError(model.ErrConfiguration, "select adapter", fmt.Errorf("youtube adapter is not configured"))
		}
		return p.youtube, nil
	case model.ProviderYandexMusic:
		adapter, ok := p.Yandex()
		if !ok {
			return nil, model.NewError(model.ErrConfiguration, "select adapter", fmt.Errorf("yandex music client is not initialized"))
		}
		return adapter, nil
	default:
		return nil, model.NewError(model.ErrMalformedURL, "select adapter", fmt.Errorf("unsupported provider: %q", provider))
	}
}
