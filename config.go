package fastlap

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Configuration struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Store       StoreConfig       `yaml:"store"`
	Accounts    AccountsConfig    `yaml:"accounts"`
	Uploads     UploadsConfig     `yaml:"uploads"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

type HTTPConfig struct {
	Hostname    string   `yaml:"hostname"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StoreConfig struct {
	// Type is "bolt" or "json"
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type AccountsConfig struct {
	SeedDefaultAdmin bool   `yaml:"seed_default_admin"`
	DefaultUsername  string `yaml:"default_username"`
	DefaultPassword  string `yaml:"default_password"`
}

type UploadsConfig struct {
	Path        string `yaml:"path"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	ServePrefix string `yaml:"serve_prefix"`
}

type LeaderboardConfig struct {
	// GapOnCreate controls whether the create response carries a computed
	// gap or leaves it empty; listings always include gaps.
	GapOnCreate bool `yaml:"gap_on_create"`
}

func DefaultConfig() *Configuration {
	return &Configuration{
		HTTP: HTTPConfig{
			Port:        8772,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Type: "bolt",
			Path: "./fastlap.db",
		},
		Accounts: AccountsConfig{
			SeedDefaultAdmin: true,
			DefaultUsername:  "admin",
			DefaultPassword:  "admin",
		},
		Uploads: UploadsConfig{
			Path:        "./uploads",
			MaxSizeMB:   10,
			ServePrefix: "/uploads",
		},
	}
}

// ReadConfig loads a yaml config file over the defaults. A missing file is
// not an error; the defaults apply.
func ReadConfig(path string) (*Configuration, error) {
	config := DefaultConfig()

	f, err := os.Open(path)

	if os.IsNotExist(err) {
		return config, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "could not open config file")
	}

	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, errors.Wrap(err, "could not parse config file")
	}

	return config, nil
}

// OpenStore builds the configured store backend.
func (c *Configuration) OpenStore() (Store, error) {
	switch c.Store.Type {
	case "json":
		return NewJSONStore(c.Store.Path)
	case "bolt", "":
		return NewBoltStore(c.Store.Path)
	default:
		return nil, errors.Errorf("unknown store type: %q", c.Store.Type)
	}
}
