package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nebula-labs/nebula-reconstruct/internal/domain"
	"github.com/nebula-labs/nebula-reconstruct/internal/manifest"
	"github.com/nebula-labs/nebula-reconstruct/internal/reconstruct"
)

var (
	rebuildOut    string
	rebuildKeyHex string
	rebuildQuiet  bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <manifest> [--shard-dir DIR] --out PATH [--key-hex HEX]",
	Short: "Reconstruct the original file from a manifest and its shards",
	Args:  cobra.ExactArgs(1),
	Run:   runRebuild,
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildOut, "out", "", "output path for the reconstructed file (required)")
	rebuildCmd.Flags().StringVar(&rebuildKeyHex, "key-hex", "", "hex-encoded AES-256-GCM key, required if the manifest declares encryption")
	rebuildCmd.Flags().BoolVarP(&rebuildQuiet, "quiet", "q", false, "suppress progress output")
	_ = rebuildCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) {
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
	if err := manifest.Validate(raw, m, shardDir); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	key, err := resolveKey(cmd)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	var bar *progressbar.ProgressBar
	if !rebuildQuiet {
		bar = progressbar.Default(int64(len(m.Shards)), "loading shards")
	}

	report, plaintext, err := reconstruct.ReconstructFile(m, reconstruct.Options{
		ShardDir:   shardDir,
		Key:        key,
		VerifyHash: true,
	})
	if bar != nil {
		bar.Finish()
	}

	if err != nil {
		fmt.Printf("❌ %v\n", err)
		printReportSummary(report)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(rebuildOut), 0o755); err != nil {
		fmt.Printf("❌ creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(rebuildOut, plaintext, 0o644); err != nil {
		fmt.Printf("❌ writing output file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ reconstructed %d bytes -> %s\n", report.ReconstructedSize, rebuildOut)
	printReportSummary(report)
}

func resolveKey(cmd *cobra.Command) ([]byte, error) {
	hexKey := rebuildKeyHex
	if hexKey == "" && cfg != nil {
		hexKey = cfg.KeyHex
	}
	if hexKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding --key-hex: %w", err)
	}
	return key, nil
}

func printReportSummary(report *domain.Report) {
	if report == nil {
		return
	}
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
