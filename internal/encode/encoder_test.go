package encode_test

import (
	"crypto/rand"
	"testing"

	"github.com/nebula-labs/nebula-reconstruct/internal/encode"
)

func TestEncodeProducesConsistentShards(t *testing.T) {
	plaintext := []byte("Hello, World! This is test data.")
	result, err := encode.Encode(plaintext, encode.Options{K: 3, N: 5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(result.Shards) != 5 {
		t.Fatalf("got %d shards, want 5", len(result.Shards))
	}
	if len(result.Manifest.Shards) != 5 {
		t.Fatalf("got %d shard descriptors, want 5", len(result.Manifest.Shards))
	}
	want := (len(plaintext) + 2) / 3
	for i, s := range result.Shards {
		if len(s) != want {
			t.Fatalf("shard %d length %d, want %d", i, len(s), want)
		}
	}
	if result.Manifest.RS.DataShards != 3 || result.Manifest.RS.ParityShards != 2 || result.Manifest.RS.TotalShards != 5 {
		t.Fatalf("unexpected rs params: %+v", result.Manifest.RS)
	}
}

func TestEncodeWithMerkle(t *testing.T) {
	result, err := encode.Encode([]byte("data"), encode.Options{K: 2, N: 4, IncludeMerkle: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if result.Manifest.Merkle == nil {
		t.Fatal("expected merkle block")
	}
	if result.Manifest.Merkle.Root == "" {
		t.Fatal("expected non-empty merkle root")
	}
	if len(result.Manifest.Merkle.LeafHashes) != 4 {
		t.Fatalf("got %d leaf hashes, want 4", len(result.Manifest.Merkle.LeafHashes))
	}
}

func TestEncodeWithSeparatedTagEncryption(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 12)
	rand.Read(key)
	rand.Read(iv)

	plaintext := []byte("secret payload")
	result, err := encode.Encode(plaintext, encode.Options{K: 2, N: 4, Key: key, IV: iv, SeparateTag: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if result.Manifest.Encryption == nil {
		t.Fatal("expected encryption block")
	}
	if result.Manifest.Encryption.Tag == "" {
		t.Fatal("expected separated tag to be set")
	}
	if result.Manifest.OriginalHash == "" {
		t.Fatal("expected original_hash to be set over plaintext")
	}
}

func TestEncodeWithTrailingTagEncryption(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 12)
	rand.Read(key)
	rand.Read(iv)

	result, err := encode.Encode([]byte("payload"), encode.Options{K: 2, N: 4, Key: key, IV: iv})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if result.Manifest.Encryption.Tag != "" {
		t.Fatal("expected no separated tag in trailing-tag mode")
	}
}
