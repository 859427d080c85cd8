package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nebula-labs/nebula-reconstruct/internal/config"
	"github.com/nebula-labs/nebula-reconstruct/internal/logging"
)

// version is set at release time; "dev" covers local builds.
var version = "dev"

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:     "nebula-reconstruct",
	Short:   "Break-glass reconstruction of erasure-coded files from a manifest and shard set",
	Long:    "nebula-reconstruct decides whether a manifest's shards are sufficient to rebuild the original file, reconstructs it if so, and reports what happened.",
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)
	setupFlags()
}

func setupFlags() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("shard-dir", "", "directory containing shard files (defaults to the manifest's own directory)")
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}
	logging.InitLogger(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
