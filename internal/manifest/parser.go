// Package manifest parses and structurally validates the manifest document,
// following the required-field and rs-consistency checks original_source's
// verify_manifest performs, plus the shard-hash check when a shard directory
// is supplied and the Merkle check when the manifest declares a root.
package manifest

import (
	"encoding/json"

	"github.com/nebula-labs/nebula-reconstruct/internal/domain"
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
	"github.com/nebula-labs/nebula-reconstruct/internal/merkle"
	"github.com/nebula-labs/nebula-reconstruct/internal/shard"
)

// Load reads and JSON-decodes a manifest document, without performing
// structural validation — call Validate afterward.
func Load(raw []byte) (*domain.Manifest, error) {
	var m domain.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.ManifestInvalid, err, "invalid JSON")
	}
	return &m, nil
}

// Validate performs the structural checks from spec: required top-level
// fields, recognized version, hash_algorithm, rs consistency, and
// shard-index sanity. If
// shardDir is non-empty, it additionally loads and hash-checks every shard
// via the shard package and fails on the first MissingFile/HashMismatch. If
// the manifest carries a Merkle root, every shard descriptor's hash must
// equal merkle.leaf_hashes[index], and the root is recomputed and compared;
// either failure is MerkleMismatch.
func Validate(raw []byte, m *domain.Manifest, shardDir string) error {
	if err := requireFields(raw); err != nil {
		return err
	}

	if m.Version != domain.RecognizedVersion {
		return nebulaerrors.New(nebulaerrors.ManifestInvalid, "unrecognized manifest version %q", m.Version)
	}

	if m.HashAlgorithm != "sha256" {
		return nebulaerrors.New(nebulaerrors.UnsupportedHash, "unsupported hash algorithm %q", m.HashAlgorithm)
	}

	if m.RS.DataShards+m.RS.ParityShards != m.RS.TotalShards {
		return nebulaerrors.New(nebulaerrors.ManifestInvalid,
			"rs.data_shards(%d) + rs.parity_shards(%d) != rs.total_shards(%d)",
			m.RS.DataShards, m.RS.ParityShards, m.RS.TotalShards)
	}
	if len(m.Shards) < m.RS.DataShards {
		return nebulaerrors.New(nebulaerrors.ManifestInvalid,
			"not enough shard descriptors (%d) to reconstruct (need >= %d)", len(m.Shards), m.RS.DataShards)
	}
	if err := validateShardIndices(m); err != nil {
		return err
	}

	if shardDir != "" {
		for _, loaded := range shard.Load(shardDir, m.Shards) {
			if !loaded.Valid {
				return loaded.Err
			}
		}
	}

	if m.Merkle != nil && m.Merkle.Root != "" {
		for _, s := range m.Shards {
			if s.Index >= len(m.Merkle.LeafHashes) || m.Merkle.LeafHashes[s.Index] != s.Hash {
				return nebulaerrors.New(nebulaerrors.MerkleMismatch,
					"merkle.leaf_hashes[%d] does not match the hash of shard %d", s.Index, s.Index)
			}
		}
		computed, err := merkle.Root(m.Merkle.LeafHashes)
		if err != nil {
			return nebulaerrors.Wrap(nebulaerrors.MerkleMismatch, err, "computing merkle root")
		}
		if computed != m.Merkle.Root {
			return nebulaerrors.New(nebulaerrors.MerkleMismatch, "computed root %s != declared root %s", computed, m.Merkle.Root)
		}
	}

	return nil
}

func validateShardIndices(m *domain.Manifest) error {
	seen := make(map[int]bool, len(m.Shards))
	for _, s := range m.Shards {
		if s.Index < 0 || s.Index >= m.RS.TotalShards {
			return nebulaerrors.New(nebulaerrors.ManifestInvalid, "shard index %d out of range [0, %d)", s.Index, m.RS.TotalShards)
		}
		if seen[s.Index] {
			return nebulaerrors.New(nebulaerrors.ManifestInvalid, "duplicate shard index %d", s.Index)
		}
		seen[s.Index] = true
	}
	return nil
}

func requireFields(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nebulaerrors.Wrap(nebulaerrors.ManifestInvalid, err, "invalid JSON")
	}
	required := []string{"version", "hash_algorithm", "original_size_bytes", "rs", "shards"}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return nebulaerrors.New(nebulaerrors.ManifestInvalid, "missing required field %q", key)
		}
	}
	return nil
}
