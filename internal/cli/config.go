package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/coreg/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envKeys maps config keys that may come from the environment to the
// variables consulted, in order. COREG_* is always tried first.
var envKeys = map[string][]string{
	"ncbi.email":         {"COREG_NCBI_EMAIL", "NCBI_EMAIL"},
	"ncbi.tool":          {"COREG_NCBI_TOOL", "NCBI_TOOL"},
	"llm.provider":       {"COREG_LLM_PROVIDER"},
	"llm.model":          {"COREG_LLM_MODEL"},
	"llm.api_key":        {"COREG_LLM_API_KEY", "OPENAI_API_KEY"},
	"llm.base_url":       {"COREG_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"storage.data_dir":   {"COREG_DATA_DIR"},
	"storage.report_dir": {"COREG_REPORT_DIR"},
	"storage.mirror_dir": {"COREG_MIRROR_DIR"},
	"http.http_proxy":    {"COREG_HTTP_PROXY", "HTTP_PROXY"},
	"http.https_proxy":   {"COREG_HTTPS_PROXY", "HTTPS_PROXY"},
	"http.no_proxy":      {"COREG_NO_PROXY", "NO_PROXY"},
}

func bindEnv(v *viper.Viper) {
	for key, envs := range envKeys {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// loadConfig layers the config file and the environment over the defaults.
// Command flags are applied afterwards by each command.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := v.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	strs := map[string]*string{
		"ncbi.email":         &cfg.NCBI.Email,
		"ncbi.tool":          &cfg.NCBI.Tool,
		"llm.provider":       &cfg.LLM.Provider,
		"llm.model":          &cfg.LLM.Model,
		"llm.api_key":        &cfg.LLM.APIKey,
		"llm.base_url":       &cfg.LLM.BaseURL,
		"storage.data_dir":   &cfg.Storage.DataDir,
		"storage.report_dir": &cfg.Storage.ReportDir,
		"storage.mirror_dir": &cfg.Storage.MirrorDir,
		"http.http_proxy":    &cfg.HTTP.HTTPProxy,
		"http.https_proxy":   &cfg.HTTP.HTTPSProxy,
		"http.no_proxy":      &cfg.HTTP.NoProxy,
		"log_level":          &cfg.LogLevel,
	}
	for key, dst := range strs {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	if v.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage coreg configuration",
	Long: `Manage coreg configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (COREG_*, NCBI_EMAIL, OPENAI_API_KEY), including a .env file
3. Config file (~/.coreg/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Println(string(yamlData))

		if cfg.LLM.APIKey != "" {
			fmt.Fprintln(os.Stderr, "LLM API key: set (hidden)")
		}
		if cfg.NCBI.Email == "" {
			fmt.Fprintln(os.Stderr, "Warning: ncbi.email is empty; set NCBI_EMAIL before running searches")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.coreg/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}
		configPath := filepath.Join(home, ".coreg", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  coreg config show\n")
		return nil
	},
}

// writeDefaultConfig writes the defaults to path, refusing to overwrite
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'coreg config show' to view it, or delete it first to recreate", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	header := `# coreg configuration file
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (COREG_*)
#   3. This config file
#   4. Built-in defaults
#
# NCBI asks every client to identify itself. Set ncbi.email here or
# export NCBI_EMAIL (a .env file in the working directory also works).

`
	footer := `
# API keys belong in the environment:
#   export OPENAI_API_KEY=sk-...
#   export OLLAMA_BASE_URL=http://localhost:11434/v1
`
	content := header + string(yamlData) + footer
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
