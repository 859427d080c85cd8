package manifest_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nebula-labs/nebula-reconstruct/internal/manifest"
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
)

func validManifestJSON() []byte {
	doc := map[string]any{
		"version":             "nebula_reconstruct_v1",
		"hash_algorithm":      "sha256",
		"original_size_bytes": 32,
		"rs":                  map[string]any{"data_shards": 3, "parity_shards": 2, "total_shards": 5},
		"shards": []map[string]any{
			{"index": 0, "path": "shard-0.bin", "hash": "a", "size_bytes": 11},
			{"index": 1, "path": "shard-1.bin", "hash": "b", "size_bytes": 11},
			{"index": 2, "path": "shard-2.bin", "hash": "c", "size_bytes": 11},
			{"index": 3, "path": "shard-3.bin", "hash": "d", "size_bytes": 11},
			{"index": 4, "path": "shard-4.bin", "hash": "e", "size_bytes": 11},
		},
	}
	raw, _ := json.Marshal(doc)
	return raw
}

func TestLoadAndValidateValid(t *testing.T) {
	raw := validManifestJSON()
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := manifest.Validate(raw, m, ""); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMissingField(t *testing.T) {
	raw := []byte(`{"hash_algorithm":"sha256","original_size_bytes":1,"rs":{},"shards":[]}`)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.ManifestInvalid {
		t.Fatalf("got err %v, want ManifestInvalid", err)
	}
}

func TestValidateUnrecognizedVersion(t *testing.T) {
	doc := map[string]any{
		"version": "nebula_reconstruct_v2", "hash_algorithm": "sha256",
		"original_size_bytes": 1,
		"rs":                  map[string]any{"data_shards": 1, "parity_shards": 1, "total_shards": 2},
		"shards":              []map[string]any{{"index": 0, "path": "a", "hash": "a"}, {"index": 1, "path": "b", "hash": "b"}},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.ManifestInvalid {
		t.Fatalf("got err %v, want ManifestInvalid", err)
	}
}

func TestValidateUnsupportedHash(t *testing.T) {
	doc := map[string]any{
		"version": "nebula_reconstruct_v1", "hash_algorithm": "md5",
		"original_size_bytes": 1,
		"rs":                  map[string]any{"data_shards": 1, "parity_shards": 1, "total_shards": 2},
		"shards":              []map[string]any{{"index": 0, "path": "a", "hash": "a"}, {"index": 1, "path": "b", "hash": "b"}},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.UnsupportedHash {
		t.Fatalf("got err %v, want UnsupportedHash", err)
	}
}

func TestValidateRSInconsistent(t *testing.T) {
	doc := map[string]any{
		"version": "nebula_reconstruct_v1", "hash_algorithm": "sha256",
		"original_size_bytes": 1,
		"rs":                  map[string]any{"data_shards": 3, "parity_shards": 1, "total_shards": 5},
		"shards":              []map[string]any{{"index": 0, "path": "a", "hash": "a"}},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.ManifestInvalid {
		t.Fatalf("got err %v, want ManifestInvalid", err)
	}
}

func TestValidateDuplicateShardIndex(t *testing.T) {
	doc := map[string]any{
		"version": "nebula_reconstruct_v1", "hash_algorithm": "sha256",
		"original_size_bytes": 1,
		"rs":                  map[string]any{"data_shards": 1, "parity_shards": 1, "total_shards": 2},
		"shards": []map[string]any{
			{"index": 0, "path": "a", "hash": "a"},
			{"index": 0, "path": "b", "hash": "b"},
		},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.ManifestInvalid {
		t.Fatalf("got err %v, want ManifestInvalid", err)
	}
}

func TestValidateShardDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte("some shard data")
	sum := sha256.Sum256(data)
	goodHash := hex.EncodeToString(sum[:])
	if err := os.WriteFile(filepath.Join(dir, "shard-0.bin"), data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc := map[string]any{
		"version": "nebula_reconstruct_v1", "hash_algorithm": "sha256",
		"original_size_bytes": len(data),
		"rs":                  map[string]any{"data_shards": 1, "parity_shards": 1, "total_shards": 2},
		"shards": []map[string]any{
			{"index": 0, "path": "shard-0.bin", "hash": goodHash},
			{"index": 1, "path": "missing.bin", "hash": "deadbeef"},
		},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, dir)
	if err == nil {
		t.Fatal("expected error for missing shard file")
	}
}

func TestValidateMerkleMismatch(t *testing.T) {
	doc := map[string]any{
		"version": "nebula_reconstruct_v1", "hash_algorithm": "sha256",
		"original_size_bytes": 1,
		"rs":                  map[string]any{"data_shards": 1, "parity_shards": 1, "total_shards": 2},
		"shards": []map[string]any{
			{"index": 0, "path": "a", "hash": "a"},
			{"index": 1, "path": "b", "hash": "b"},
		},
		"merkle": map[string]any{
			"algorithm":   "sha256",
			"root":        "0000000000000000000000000000000000000000000000000000000000000000",
			"leaf_hashes": []string{hex.EncodeToString(sha256.New().Sum(nil))},
		},
	}
	raw, _ := json.Marshal(doc)
	m, err := manifest.Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = manifest.Validate(raw, m, "")
	if nebulaerrors.KindOf(err) != nebulaerrors.MerkleMismatch {
		t.Fatalf("got err %v, want MerkleMismatch", err)
	}
}
