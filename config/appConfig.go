package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"goproductsync_api/config/values"
)

type Config interface {
}

// CatalogConfig — доступ к батч-API внешнего каталога.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
}

type AppConfig struct {
	Catalog  CatalogConfig      `yaml:"catalog"`
	Postgres PostgresConfig     `yaml:"postgres"`
	Sync     values.SyncValues  `yaml:"sync"`
	Queue    values.QueueValues `yaml:"queue"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Sync:  values.DefaultSyncValues(),
		Queue: values.DefaultQueueValues(),
	}
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{
		Sync:  values.DefaultSyncValues(),
		Queue: values.DefaultQueueValues(),
	}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
