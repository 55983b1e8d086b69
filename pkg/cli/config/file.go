package config

import (
	"bytes"
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File holds the path of an optional TOML configuration file. Values of the
// file apply to flags that were set neither on the command line nor by an
// environment variable.
type File struct {
	Path string
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("GHDIR_CONFIG"),
		},
	}
}

// FileValues is the content of a configuration file
type FileValues struct {
	Token          string  `toml:"token"`
	APIURL         string  `toml:"api_url"`
	RawURL         string  `toml:"raw_url"`
	MediaURL       string  `toml:"media_url"`
	Concurrency    *int    `toml:"concurrency"`
	Attempts       *int    `toml:"attempts"`
	MinBackoff     string  `toml:"min_backoff"`
	MaxBackoff     string  `toml:"max_backoff"`
	BlockedPattern *string `toml:"blocked_pattern"`
	Archive        *bool   `toml:"archive"`
	LogLevel       string  `toml:"log_level"`
	LogJSON        *bool   `toml:"log_json"`
}

// Load parses the configuration file. An empty path returns empty values.
func (c *File) Load() (*FileValues, error) {
	var values FileValues
	if c.Path == "" {
		return &values, nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&values); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}
	return &values, nil
}

type flagSetter interface {
	IsSet(name string) bool
	Set(name, value string) error
}

// Apply sets every flag that has a value in the file and was not set
// explicitly
func (v *FileValues) Apply(cmd flagSetter) error {
	values := map[string]string{}
	setString := func(name, value string) {
		if value != "" {
			values[name] = value
		}
	}
	setString("token", v.Token)
	setString("api-url", v.APIURL)
	setString("raw-url", v.RawURL)
	setString("media-url", v.MediaURL)
	setString("min-backoff", v.MinBackoff)
	setString("max-backoff", v.MaxBackoff)
	setString("log-level", v.LogLevel)
	if v.Concurrency != nil {
		values["concurrency"] = strconv.Itoa(*v.Concurrency)
	}
	if v.Attempts != nil {
		values["attempts"] = strconv.Itoa(*v.Attempts)
	}
	if v.BlockedPattern != nil {
		values["blocked-pattern"] = *v.BlockedPattern
	}
	if v.Archive != nil {
		values["archive"] = strconv.FormatBool(*v.Archive)
	}
	if v.LogJSON != nil {
		values["log-json"] = strconv.FormatBool(*v.LogJSON)
	}

	for name, value := range values {
		if cmd.IsSet(name) {
			continue
		}
		if err := cmd.Set(name, value); err != nil {
			return goerr.Wrap(err, "invalid value in config file", goerr.V("flag", name))
		}
	}
	return nil
}
