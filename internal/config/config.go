package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	Schema   string `yaml:"schema"`
}

// RulesConfig selects and tunes the registered rule catalog.
type RulesConfig struct {
	// Disabled lists rule names to deregister from the default catalog.
	Disabled []string `yaml:"disabled"`
	// ForbiddenExtensionColumns replaces the default column names that
	// must not appear on tables taking part in an extension hierarchy.
	ForbiddenExtensionColumns []string `yaml:"forbidden_extension_columns"`
	// TypeEquivalences adds extra equivalence classes to the foreign key
	// type compatibility relation. Each entry is a list of data types that
	// are considered mutually compatible.
	TypeEquivalences [][]string `yaml:"type_equivalences"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Rules    RulesConfig    `yaml:"rules"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	config.Database.Schema = strings.TrimSpace(config.Database.Schema)

	return &config, nil
}

func (c *Config) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// IsRuleDisabled reports whether the named rule was switched off.
func (c *Config) IsRuleDisabled(name string) bool {
	for _, disabled := range c.Rules.Disabled {
		if strings.EqualFold(disabled, name) {
			return true
		}
	}
	return false
}
