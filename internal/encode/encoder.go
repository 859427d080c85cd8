// Package encode is the test-fixture counterpart to internal/reconstruct: it
// builds a manifest and shard set the way original_source's encode_data
// does, optionally wrapping the plaintext in AES-256-GCM and computing a
// Merkle root over the shard hashes first. It has no CLI subcommand of its
// own — it exists so tests can produce realistic fixtures without a second,
// divergent implementation of the RS/manifest/Merkle plumbing.
package encode

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nebula-labs/nebula-reconstruct/internal/domain"
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
	"github.com/nebula-labs/nebula-reconstruct/internal/merkle"
	"github.com/nebula-labs/nebula-reconstruct/internal/rs"
)

// Options configures one encode pass.
type Options struct {
	K, N int

	// IncludeMerkle computes and attaches a merkle block over the shard
	// hashes when true.
	IncludeMerkle bool

	// Key, when non-nil, AES-256-GCM-encrypts the plaintext (with a
	// caller-supplied IV) before it is split into shards; a random IV is
	// not generated here since callers that need reproducible fixtures
	// supply their own.
	Key []byte
	IV  []byte

	// SeparateTag splits the GCM tag into manifest.encryption.tag, leaving
	// only the ciphertext to be sharded (the "separated tag" shape from
	// the tag-handling open question). When false, the tag stays appended
	// to the sharded bytes (the "trailing bytes" shape).
	SeparateTag bool
}

// Result bundles the manifest and the raw shard bytes (indexed like
// manifest.Shards) that a shard directory's files would hold.
type Result struct {
	Manifest *domain.Manifest
	Shards   [][]byte
}

// Encode builds a manifest plus n shards for plaintext, following
// original_source's encode_data: pad to a multiple of k, split into k data
// shards, run the RS codec for n-k parity shards, hash each shard, and
// optionally Merkle-root the hashes. original_hash is the hash of plaintext
// itself (what the orchestrator verifies after decryption); original_size_bytes
// is the length of whatever was actually handed to the RS codec — the GCM
// ciphertext when encryption is used, since that's what post-RS truncation
// must reproduce before AEAD open runs.
func Encode(plaintext []byte, opts Options) (*Result, error) {
	sourceHash := sha256.Sum256(plaintext)

	toShard := plaintext
	var encInfo *domain.EncryptionInfo
	if opts.Key != nil {
		sealed, err := sealGCM(opts.Key, opts.IV, plaintext)
		if err != nil {
			return nil, err
		}
		encInfo = &domain.EncryptionInfo{
			Algorithm: "aes-256-gcm",
			IV:        hex.EncodeToString(opts.IV),
		}
		if opts.SeparateTag {
			split := len(sealed) - 16
			toShard = sealed[:split]
			encInfo.Tag = hex.EncodeToString(sealed[split:])
		} else {
			toShard = sealed
		}
	}

	shards, params, err := rs.Encode(toShard, opts.K, opts.N)
	if err != nil {
		return nil, err
	}

	descriptors := make([]domain.ShardDescriptor, len(shards))
	leafHashes := make([]string, len(shards))
	for i, s := range shards {
		sum := sha256.Sum256(s)
		h := hex.EncodeToString(sum[:])
		descriptors[i] = domain.ShardDescriptor{
			Index:     i,
			Path:      fmt.Sprintf("shard-%d.bin", i),
			Hash:      h,
			SizeBytes: int64(len(s)),
		}
		leafHashes[i] = h
	}

	var merkleInfo *domain.MerkleInfo
	if opts.IncludeMerkle {
		root, err := merkle.Root(leafHashes)
		if err != nil {
			return nil, err
		}
		merkleInfo = &domain.MerkleInfo{
			Algorithm:  "sha256",
			Root:       root,
			LeafHashes: leafHashes,
		}
	}

	manifest := &domain.Manifest{
		Version:           domain.RecognizedVersion,
		HashAlgorithm:     "sha256",
		OriginalSizeBytes: int64(len(toShard)),
		OriginalHash:      hex.EncodeToString(sourceHash[:]),
		RS: domain.RSParams{
			DataShards:   params.K,
			ParityShards: params.N - params.K,
			TotalShards:  params.N,
		},
		Shards:     descriptors,
		Merkle:     merkleInfo,
		Encryption: encInfo,
	}

	return &Result{Manifest: manifest, Shards: shards}, nil
}

func sealGCM(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.InvalidParams, err, "constructing AES cipher for fixture encryption")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.InvalidParams, err, "constructing GCM for fixture encryption")
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}
