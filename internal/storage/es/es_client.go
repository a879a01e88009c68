package es

import (
	"errors"

	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultIndexName = "game_announcements"

var ErrNoAddresses = errors.New("elasticsearch addresses are required")

type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

func newClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	if len(config.Addresses) == 0 {
		return nil, ErrNoAddresses
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	return elasticsearch.NewTypedClient(cfg)
}
