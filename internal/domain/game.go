package domain

// SourceKind names a source adapter implementation.
type SourceKind string

const (
	SourceRSS      SourceKind = "rss"
	SourceCMSJS    SourceKind = "cms_js"
	SourceWeibo    SourceKind = "weibo"
	SourceBilibili SourceKind = "bilibili"
	SourceHTML     SourceKind = "html"
)

// Game is a tracked title together with where its announcements come from.
type Game struct {
	Name            string         `yaml:"name" json:"name" schema:"required,minLength=1"`
	Publisher       string         `yaml:"publisher" json:"publisher,omitempty"`
	OfficialDomains []string       `yaml:"officialDomains" json:"officialDomains,omitempty"`
	Sources         []SourceConfig `yaml:"sources" json:"sources,omitempty" schema:"required,minItems=1"`
}

// SourceConfig describes one upstream for a game.
type SourceConfig struct {
	Kind SourceKind `yaml:"kind" json:"kind" schema:"required,enum=rss|cms_js|weibo|bilibili|html"`
	URL  string     `yaml:"url" json:"url" schema:"required,minLength=1"`
	// BaseURL is the human-facing page used as fallback link.
	BaseURL string `yaml:"baseUrl" json:"baseUrl,omitempty"`
	Label   string `yaml:"label" json:"label,omitempty"`
	// Selectors configure the html adapter.
	Selectors *HTMLSelectors `yaml:"selectors" json:"selectors,omitempty"`
	// Variable names the script variable holding the list for the cms_js adapter.
	Variable string `yaml:"variable" json:"variable,omitempty"`
	Disabled bool   `yaml:"disabled" json:"disabled,omitempty"`
}

// HTMLSelectors are CSS selectors relative to each matched item.
type HTMLSelectors struct {
	Item       string `yaml:"item" json:"item" schema:"required"`
	Title      string `yaml:"title" json:"title" schema:"required"`
	Link       string `yaml:"link" json:"link" schema:"required"`
	Date       string `yaml:"date" json:"date,omitempty"`
	DateLayout string `yaml:"dateLayout" json:"dateLayout,omitempty"`
}

// EnabledSources returns the sources not switched off in configuration.
func (g Game) EnabledSources() []SourceConfig {
	var enabled []SourceConfig
	for _, s := range g.Sources {
		if !s.Disabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
