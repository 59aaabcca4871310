package mllp

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// fileConfig is the on-disk representation of a ConnectionConfig. Unset keys keep their defaults.
type fileConfig struct {
	Host           *string `toml:"host" yaml:"host"`
	Port           *int    `toml:"port" yaml:"port"`
	ConnectTimeout *string `toml:"connect_timeout" yaml:"connect_timeout"`
	ReplyTimeout   *string `toml:"reply_timeout" yaml:"reply_timeout"`
	WriteTimeout   *string `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout    *string `toml:"idle_timeout" yaml:"idle_timeout"`
	CloseTimeout   *string `toml:"close_timeout" yaml:"close_timeout"`
	MaxFrameSize   *int    `toml:"max_frame_size" yaml:"max_frame_size"`
}

// LoadConnectionConfig reads a connection configuration file from fs.
//
// The format is chosen by the file extension: ".toml" for TOML, ".yaml" or ".yml" for YAML.
// Durations are written as Go duration strings, e.g. "30s". Unknown keys are rejected.
//
// The port defaults to DefaultPort when the file doesn't set it. opts are applied after the file
// settings and override them.
func LoadConnectionConfig(fs afero.Fs, path string, opts ...ConnOption) (*ConnectionConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config parse failed (%s): unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &raw, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config load failed (%s): unsupported file extension %q", path, ext)
	}

	fileOpts, err := raw.options()
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	host := ""
	if raw.Host != nil {
		host = strings.TrimSpace(*raw.Host)
	}
	port := DefaultPort
	if raw.Port != nil {
		port = *raw.Port
	}

	return NewConnectionConfig(host, port, append(fileOpts, opts...)...)
}

func (fc *fileConfig) options() ([]ConnOption, error) {
	var opts []ConnOption

	durations := []struct {
		key   string
		value *string
		opt   func(time.Duration) ConnOption
	}{
		{key: "connect_timeout", value: fc.ConnectTimeout, opt: WithConnectTimeout},
		{key: "reply_timeout", value: fc.ReplyTimeout, opt: WithReplyTimeout},
		{key: "write_timeout", value: fc.WriteTimeout, opt: WithWriteTimeout},
		{key: "idle_timeout", value: fc.IdleTimeout, opt: WithIdleTimeout},
		{key: "close_timeout", value: fc.CloseTimeout, opt: WithCloseTimeout},
	}

	for _, d := range durations {
		if d.value == nil {
			continue
		}

		val, err := time.ParseDuration(strings.TrimSpace(*d.value))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		opts = append(opts, d.opt(val))
	}

	if fc.MaxFrameSize != nil {
		opts = append(opts, WithMaxFrameSize(*fc.MaxFrameSize))
	}

	return opts, nil
}
