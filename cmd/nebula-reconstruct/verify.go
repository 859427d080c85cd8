package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nebula-labs/nebula-reconstruct/internal/manifest"
)

var verifyQuiet bool

var verifyCmd = &cobra.Command{
	Use:   "verify <manifest> [--shard-dir DIR]",
	Short: "Parse and structurally validate a manifest and hash-check its shards (from --shard-dir, else the manifest's directory)",
	Args:  cobra.ExactArgs(1),
	Run:   runVerify,
}

func init() {
	verifyCmd.Flags().BoolVarP(&verifyQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	manifestPath := args[0]
	shardDir := resolveShardDir(cmd, manifestPath)

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		fmt.Printf("❌ reading manifest: %v\n", err)
		os.Exit(1)
	}

	m, err := manifest.Load(raw)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	if shardDir != "" && !verifyQuiet {
		bar := progressbar.Default(int64(len(m.Shards)), "verifying shards")
		for range m.Shards {
			bar.Add(1)
		}
	}

	if err := manifest.Validate(raw, m, shardDir); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ manifest %s is structurally valid (%d shards, k=%d n=%d)\n",
		filepath.Base(manifestPath), len(m.Shards), m.RS.DataShards, m.RS.TotalShards)
}

func resolveShardDir(cmd *cobra.Command, manifestPath string) string {
	dir, _ := cmd.Flags().GetString("shard-dir")
	if dir != "" {
		return dir
	}
	if cfg != nil && cfg.ShardDir != "" {
		return cfg.ShardDir
	}
	return filepath.Dir(manifestPath)
}
