package common

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const (
	configPathEnv = "EMAILREADER_CONFIG"
	envPrefix     = "EMAILREADER_"
	configTag     = "key"
)

//go:embed config.default.yaml
var defaultConfig []byte

// ConfigManager loads layered configuration: embedded defaults, then an optional
// file, then environment variables.
type ConfigManager[T any] struct {
	kf     *koanf.Koanf
	config T
}

// NewConfigManager loads configuration from the default locations
func NewConfigManager[T any]() (*ConfigManager[T], error) {
	return NewConfigManagerFromPath[T](DefaultConfigPath())
}

// NewConfigManagerFromPath loads configuration using the given file. A missing
// file is not an error.
func NewConfigManagerFromPath[T any](path string) (*ConfigManager[T], error) {
	cm := &ConfigManager[T]{kf: koanf.New(".")}

	if err := cm.kf.Load(rawbytes.Provider(defaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	if path != "" {
		if err := cm.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cm.kf.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := cm.unmarshal(); err != nil {
		return nil, err
	}
	return cm, nil
}

// GetConfig returns the loaded configuration
func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

func (cm *ConfigManager[T]) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}

	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	}

	if err := cm.kf.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("config file loaded")
	return nil
}

func (cm *ConfigManager[T]) unmarshal() error {
	var config T
	err := cm.kf.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: configTag,
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &config,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	cm.config = config
	return nil
}

// DefaultConfigPath returns $EMAILREADER_CONFIG or ~/.emailreader/config.yaml
func DefaultConfigPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".emailreader", "config.yaml")
}

// envKey maps EMAILREADER_OAUTH__CLIENT_ID to oauth.clientId. Sections are
// separated by a double underscore.
func envKey(s string) string {
	if s == configPathEnv {
		return ""
	}

	sections := strings.Split(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__")
	for i, section := range sections {
		sections[i] = camelCase(section)
	}
	return strings.Join(sections, ".")
}

func camelCase(s string) string {
	words := strings.Split(s, "_")
	for i := 1; i < len(words); i++ {
		if words[i] != "" {
			words[i] = strings.ToUpper(words[i][:1]) + words[i][1:]
		}
	}
	return strings.Join(words, "")
}
