package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/tempnode/core/agent"
	"github.com/kilianp07/tempnode/core/metrics"
	"github.com/kilianp07/tempnode/infra/mqtt"
)

type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Sensor  SensorConfig   `json:"sensor"`
	Agent   agent.Config   `json:"agent"`
	Metrics metrics.Config `json:"metrics"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TEMPNODE_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tempnode_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Sensor.SetDefaults()
	cfg.Agent.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sensor.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
