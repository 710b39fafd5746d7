// Command pagetree serves and edits a page tree.
//
// Configuration is read, lowest priority first, from the built in defaults,
// a YAML file (--config, PAGETREE_CONFIG_FILE or ./.pagetree.yml), PAGETREE_
// prefixed environment variables and command line flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pagetree "github.com/goliatone/go-pagetree"
	"github.com/goliatone/go-pagetree/internal/runtimeconfig"
)

const envPrefix = "PAGETREE"

type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "pagetree",
		Short:         "Page tree and region content engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is .pagetree.yml, can also use PAGETREE_CONFIG_FILE)")
	flags.String("driver", "", "storage driver (sqlite, postgres); empty keeps pages in memory")
	flags.String("dsn", "", "storage data source name")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = c.v.BindPFlag("storage.driver", flags.Lookup("driver"))
	_ = c.v.BindPFlag("storage.dsn", flags.Lookup("dsn"))
	_ = c.v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(
		c.serveCommand(),
		c.resolveCommand(),
		c.treeCommand(),
		c.migrateCommand(),
		c.pageCommand(),
	)
	return root
}

func (c *cli) initConfig() error {
	v := c.v
	switch {
	case c.cfgFile != "":
		v.SetConfigFile(c.cfgFile)
	case os.Getenv(envPrefix+"_CONFIG_FILE") != "":
		v.SetConfigFile(os.Getenv(envPrefix + "_CONFIG_FILE"))
	default:
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".pagetree")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, runtimeconfig.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || c.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// setDefaults registers the scalar defaults so environment variables can
// override keys that no config file mentions.
func setDefaults(v *viper.Viper, cfg runtimeconfig.Config) {
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.migrate", cfg.Storage.Migrate)
	v.SetDefault("storage.max_open_conns", cfg.Storage.MaxOpenConns)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.provider", cfg.Cache.Provider)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.key_prefix", cfg.Cache.KeyPrefix)
	v.SetDefault("cache.redis.addr", cfg.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", cfg.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", cfg.Cache.Redis.DB)
	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("registry.require_sealed", cfg.Registry.RequireSealed)
}

// config decodes the merged settings over the defaults. Templates and
// content types keep their defaults unless the file lists them.
func (c *cli) config() (runtimeconfig.Config, error) {
	cfg := runtimeconfig.DefaultConfig()
	if err := c.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *cli) module(ctx context.Context) (*pagetree.Module, runtimeconfig.Config, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, cfg, err
	}
	m, err := pagetree.New(ctx, cfg)
	return m, cfg, err
}
