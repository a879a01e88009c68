package source

import (
	"fmt"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/go-resty/resty/v2"
)

// NewAdapter creates the adapter for cfg.Kind.
func NewAdapter(cfg domain.SourceConfig, client *resty.Client) (Adapter, error) {
	switch cfg.Kind {
	case domain.SourceRSS:
		return NewRSSAdapter(cfg, client), nil
	case domain.SourceCMSJS:
		return NewCMSJSAdapter(cfg, client), nil
	case domain.SourceWeibo:
		return NewWeiboAdapter(cfg, client), nil
	case domain.SourceBilibili:
		return NewBilibiliAdapter(cfg, client), nil
	case domain.SourceHTML:
		a, err := NewHTMLAdapter(cfg, client)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Kind)
	}
}
