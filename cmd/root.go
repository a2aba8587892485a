// Package cmd implements the command-line interface for the harvester.
// It provides the root command and the harvest/index/reindex/migrate
// subcommands that drive the record lifecycle.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oai-harvest/harvester/cmd/harvest"
	"github.com/oai-harvest/harvester/cmd/index"
	"github.com/oai-harvest/harvester/cmd/migrate"
	"github.com/oai-harvest/harvester/cmd/reindex"
	"github.com/oai-harvest/harvester/cmd/retryharvest"
	"github.com/oai-harvest/harvester/internal/config/indexer"
	"github.com/oai-harvest/harvester/internal/config/oai"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands.
	Debug bool

	// rootCmd represents the root command for the harvester CLI.
	rootCmd = &cobra.Command{
		Use:   "harvester",
		Short: "An OAI-PMH harvester and search indexer",
		Long: `Harvests records from an OAI-PMH repository, extracts metadata, and
drives them into a search index.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

// init registers global flags and subcommands.
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is config.yaml in . or ./config)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("harvester version %s\n", "0.1.0")
		},
	})

	rootCmd.AddCommand(harvest.Command())
	rootCmd.AddCommand(index.Command())
	rootCmd.AddCommand(reindex.Command())
	rootCmd.AddCommand(retryharvest.Command())
	rootCmd.AddCommand(migrate.Command())
}

// initConfig reads in config file and environment variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("bind debug flag: %w", err)
	}
	if Debug || viper.GetBool("app.debug") {
		viper.Set("app.debug", true)
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}

	return nil
}

// bindEnvVars maps environment variables to the viper keys the config
// subpackages read (mirrors the `env:` struct tags on each Config type).
func bindEnvVars() error {
	binds := map[string]string{
		"oai.endpoint":                  "HARVESTER_OAI_ENDPOINT",
		"oai.metadata_prefix":           "HARVESTER_OAI_METADATA_PREFIX",
		"oai.timeout":                   "HARVESTER_OAI_TIMEOUT",
		"oai.retries":                   "HARVESTER_OAI_RETRIES",
		"indexer.data_dir":              "HARVESTER_DATA_DIR",
		"indexer.oai_repository":        "HARVESTER_OAI_REPOSITORY",
		"indexer.traject_binary":        "HARVESTER_TRAJECT_BINARY",
		"indexer.traject_configuration": "HARVESTER_TRAJECT_CONFIG",
		"indexer.repository":            "HARVESTER_TRAJECT_REPOSITORY",
		"indexer.solr_url":              "HARVESTER_SOLR_URL",
		"indexer.solr_commit_within_ms": "HARVESTER_SOLR_COMMIT_WITHIN_MS",
		"indexer.record_timeout":        "HARVESTER_INDEX_RECORD_TIMEOUT",
		"database.host":                 "HARVESTER_DB_HOST",
		"database.port":                 "HARVESTER_DB_PORT",
		"database.user":                 "HARVESTER_DB_USER",
		"database.password":             "HARVESTER_DB_PASSWORD",
		"database.dbname":               "HARVESTER_DB_NAME",
		"database.sslmode":              "HARVESTER_DB_SSLMODE",
		"database.max_open_conns":       "HARVESTER_DB_MAX_OPEN_CONNS",
		"logger.level":                  "LOG_LEVEL",
		"logger.encoding":               "LOG_FORMAT",
	}
	for key, env := range binds {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// setDefaults sets production-safe default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "harvester",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("oai", map[string]any{
		"timeout": oai.DefaultTimeout.String(),
		"retries": oai.DefaultRetries,
	})

	viper.SetDefault("indexer", map[string]any{
		"traject_binary":        indexer.DefaultTrajectBinary,
		"solr_commit_within_ms": indexer.DefaultSolrCommitWithinMs,
		"record_timeout":        indexer.DefaultRecordTimeout.String(),
	})

	viper.SetDefault("database", map[string]any{
		"sslmode": "disable",
	})
}
