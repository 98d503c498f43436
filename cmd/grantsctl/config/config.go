package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName        = "grantsctl"
	ConfigFileName = "config"
	ConfigFileType = "yaml"
)

// Context represents a single CLI context (server endpoint and auth info)
type Context struct {
	Name           string `mapstructure:"name" yaml:"name"`
	ServerEndpoint string `mapstructure:"server_endpoint" yaml:"server_endpoint"`
	UserAuthToken  string `mapstructure:"user_auth_token" yaml:"user_auth_token,omitempty"`
}

// CLIConfig holds the overall CLI configuration
type CLIConfig struct {
	CurrentContext string              `mapstructure:"current_context"`
	Contexts       map[string]*Context `mapstructure:"contexts"`
}

var (
	GlobalConfig *CLIConfig
	CfgFile      string // Path to the config file used
)

// DefaultPath returns $HOME/.grantsctl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, ConfigFileName+"."+ConfigFileType), nil
}

// InitConfig loads CfgFile (or the default path) into GlobalConfig. A
// missing file yields an empty configuration.
func InitConfig() error {
	if CfgFile == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		CfgFile = path
	}

	cfg, err := Load(CfgFile)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load reads the configuration at path.
func Load(path string) (*CLIConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileType)
	v.SetEnvPrefix("GRANTSCTL")
	v.AutomaticEnv()

	cfg := &CLIConfig{Contexts: make(map[string]*Context)}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Contexts == nil { // Ensure map is initialized after Unmarshal
		cfg.Contexts = make(map[string]*Context)
	}
	for name, c := range cfg.Contexts {
		if c.Name == "" {
			c.Name = name
		}
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func (cfg *CLIConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(path), err)
	}

	contexts := make(map[string]interface{}, len(cfg.Contexts))
	for name, c := range cfg.Contexts {
		contexts[name] = map[string]interface{}{
			"name":            c.Name,
			"server_endpoint": c.ServerEndpoint,
			"user_auth_token": c.UserAuthToken,
		}
	}

	v := viper.New()
	v.SetConfigType(ConfigFileType)
	v.Set("current_context", cfg.CurrentContext)
	v.Set("contexts", contexts)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}
	// The file holds tokens.
	return os.Chmod(path, 0o600)
}

// SaveConfig saves GlobalConfig to CfgFile.
func SaveConfig() error {
	if GlobalConfig == nil {
		return errors.New("config not initialized")
	}
	if CfgFile == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		CfgFile = path
	}
	return GlobalConfig.Save(CfgFile)
}

// SetContext creates or updates a context. Empty values leave the existing
// ones in place. The first context becomes the current one.
func (cfg *CLIConfig) SetContext(name, endpoint, token string) *Context {
	c, exists := cfg.Contexts[name]
	if !exists {
		c = &Context{Name: name}
		cfg.Contexts[name] = c
	}
	if endpoint != "" {
		c.ServerEndpoint = endpoint
	}
	if token != "" {
		c.UserAuthToken = token
	}
	if cfg.CurrentContext == "" {
		cfg.CurrentContext = name
	}
	return c
}

// UseContext makes name the current context.
func (cfg *CLIConfig) UseContext(name string) error {
	if _, exists := cfg.Contexts[name]; !exists {
		return fmt.Errorf("context '%s' not found", name)
	}
	cfg.CurrentContext = name
	return nil
}

// Current returns the active context.
func (cfg *CLIConfig) Current() (*Context, error) {
	if cfg.CurrentContext == "" {
		return nil, errors.New("no current context set. Use 'grantsctl config set-context <name> --endpoint <url>'")
	}
	c, exists := cfg.Contexts[cfg.CurrentContext]
	if !exists {
		return nil, fmt.Errorf("current context '%s' not found in configuration", cfg.CurrentContext)
	}
	return c, nil
}

// GetCurrentContext returns the currently active context configuration.
func GetCurrentContext() (*Context, error) {
	if GlobalConfig == nil {
		return nil, errors.New("config not initialized properly")
	}
	return GlobalConfig.Current()
}
