// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the safescan CLI. Each subcommand is
// a thin shell over an internal package: analyze runs the scan pipeline,
// session/override/alerts manage stored state, serve runs the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/safescan/internal/policy"
	"github.com/pdiddy/safescan/internal/secrets"
	"github.com/pdiddy/safescan/internal/store"
	"github.com/pdiddy/safescan/internal/terms"
	"github.com/pdiddy/safescan/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the safescan CLI.
var rootCmd = &cobra.Command{
	Use:   "safescan",
	Short: "Decide whether a food label is safe for a set of profiles",
	Long: `safescan reads ingredient label text, matches it against allergy,
dietary, and forbidden-keyword profiles, and reports an evidence-backed
verdict per profile: SAFE, CAUTION, UNSAFE, or MANUAL_REVIEW.

It prefers a false alarm to a missed allergen: unreadable labels are sent
to manual review rather than reported safe.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, skipped, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		for _, name := range skipped {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s\n", name)
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./safescan.yaml or ~/.config/safescan/safescan.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("safescan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "safescan"))
		}
	}

	// Defaults register every key so environment overrides reach Unmarshal.
	viper.SetDefault("engine.terms_file", "")
	viper.SetDefault("engine.fail_open_unreadable", false)
	viper.SetDefault("engine.low_confidence_manual_review", true)
	viper.SetDefault("store.driver", string(types.DriverSQLite))
	viper.SetDefault("store.dsn", "")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.rate_limit_rps", 10)
	viper.SetDefault("server.rate_limit_burst", 20)
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("notify.nats_url", "")
	viper.SetDefault("notify.subject", "safescan.alerts")
	viper.SetDefault("notify.max_attempts", 3)
	viper.SetDefault("log.level", "info")

	viper.SetEnvPrefix("SAFESCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig unmarshals viper settings, fills secrets, and applies defaults.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Store.DSN = loadedSecrets.Or(secrets.KeyStoreDSN, cfg.Store.DSN)
	cfg.Notify.NATSURL = loadedSecrets.Or(secrets.KeyNATSURL, cfg.Notify.NATSURL)
	return cfg.WithDefaults(), nil
}

// loadTerms returns the built-in term databases extended by the configured
// overlay, if any.
func loadTerms(cfg types.EngineConfig) (*terms.DB, error) {
	if cfg.TermsFile == "" {
		return terms.Default(), nil
	}
	return terms.LoadOverlay(cfg.TermsFile, terms.Default())
}

func newEngine(cfg types.EngineConfig) (*policy.Engine, error) {
	db, err := loadTerms(cfg)
	if err != nil {
		return nil, err
	}
	return policy.New(db), nil
}

func openStore(ctx context.Context, cfg types.StoreConfig) (*store.Store, error) {
	if cfg.Driver == types.DriverPostgres && cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn (or .secrets/%s) is required for postgres", secrets.KeyStoreDSN)
	}
	return store.Open(ctx, cfg)
}

// readProfiles loads a YAML profiles file.
func readProfiles(path string) ([]types.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles %s: %w", path, err)
	}
	var f types.ProfilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles %s: %w", path, err)
	}
	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("profiles %s: no profiles defined", path)
	}
	for i, p := range f.Profiles {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("profiles %s: profile %d has no id", path, i)
		}
	}
	return f.Profiles, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
