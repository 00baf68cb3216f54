package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultProfileName = "default"
	DefaultLogLevel    = "info"

	homeEnv   = "VIBELLA_HOME"
	envPrefix = "VIBELLA"
)

// Keys understood by the override layer. Each maps to VIBELLA_<KEY>.
const (
	KeyBaseURL  = "base_url"
	KeyLogLevel = "log_level"
	KeyLogFile  = "log_file"
)

type Profile struct {
	BaseURL        string   `json:"base_url"`
	RequestTimeout Duration `json:"request_timeout,omitempty"`
}

type Config struct {
	Profiles      map[string]Profile `json:"profiles"`
	ActiveProfile string             `json:"active_profile"`
	LogLevel      string             `json:"log_level,omitempty"`
	LogFile       string             `json:"log_file,omitempty"`

	currentProfile *Profile
	overrides      *viper.Viper
}

// Duration marshals as a Go duration string ("30s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// NewOverrides returns the env/flag layer applied on top of the file.
// Bind cobra flags to it with BindPFlag using the Key* names.
func NewOverrides() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func LoadConfig(overrides *viper.Viper) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	if overrides == nil {
		overrides = NewOverrides()
	}
	config.overrides = overrides

	return config, nil
}

func (c *Config) GetBaseURL() string {
	if v := c.override(KeyBaseURL); v != "" {
		return v
	}
	if c.currentProfile == nil || c.currentProfile.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetRequestTimeout() time.Duration {
	if c.currentProfile == nil {
		return 0
	}
	return time.Duration(c.currentProfile.RequestTimeout)
}

func (c *Config) GetLogLevel() string {
	if v := c.override(KeyLogLevel); v != "" {
		return v
	}
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// GetLogFile defaults to vibella.log next to the config file.
func (c *Config) GetLogFile() string {
	if v := c.override(KeyLogFile); v != "" {
		return v
	}
	if c.LogFile != "" {
		return c.LogFile
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return filepath.Join(os.TempDir(), "vibella.log")
	}
	return filepath.Join(filepath.Dir(configPath), "vibella.log")
}

func (c *Config) override(key string) string {
	if c.overrides == nil {
		return ""
	}
	return strings.TrimSpace(c.overrides.GetString(key))
}

func GetConfigPath() (string, error) {
	var configDir string

	// Use VIBELLA_HOME if set, otherwise use user's home directory
	if home := os.Getenv(homeEnv); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".vibella", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func DefaultProfile() Profile {
	return Profile{BaseURL: DefaultBaseURL}
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		ActiveProfile: DefaultProfileName,
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order
		names := c.ProfileNames()
		c.ActiveProfile = names[0]
		profile = c.Profiles[names[0]]
	}

	c.currentProfile = &profile
	return nil
}
