package reconstruct

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nebula-labs/nebula-reconstruct/internal/aead"
	"github.com/nebula-labs/nebula-reconstruct/internal/domain"
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
	"github.com/nebula-labs/nebula-reconstruct/internal/rs"
	"github.com/nebula-labs/nebula-reconstruct/internal/shard"
)

// Options configures one reconstruction attempt.
type Options struct {
	ShardDir string
	Key      []byte

	// VerifyHash controls whether the final plaintext's SHA-256 is checked
	// against the manifest's original_hash, when present. The zero value
	// (false) skips the check; verification runs only when it is set to true.
	VerifyHash bool
}

// ReconstructFile runs the C->B->F->G pipeline described for the
// orchestrator: load and verify shards, check feasibility, decode, unwrap
// any encryption envelope, verify the final hash, and emit a report. It does
// not run the manifest's structural or Merkle checks (manifest.Validate). On
// fatal failure the returned plaintext is nil; the report still carries the
// failure kind for diagnostics.
func ReconstructFile(m *domain.Manifest, opts Options) (*domain.Report, []byte, error) {
	report := &domain.Report{
		OriginalSize:   m.OriginalSizeBytes,
		OriginalHash:   m.OriginalHash,
		ShardsRequired: m.RS.DataShards,
	}

	loaded := shard.Load(opts.ShardDir, m.Shards)
	report.ShardDetails = make([]domain.ShardDetail, len(loaded))

	shardMap := make(map[int][]byte, len(loaded))
	corrupt := make(map[int]bool, len(loaded))
	var availableIndices []int
	for i, l := range loaded {
		detail := domain.ShardDetail{Index: l.Index, Path: l.Path, Valid: l.Valid}
		if l.Err != nil {
			detail.Error = l.Err.Error()
		}
		report.ShardDetails[i] = detail

		// "Available" means the file itself was readable, whether or not
		// its hash matched; shards_valid is the stricter hash-verified
		// count feasibility runs over.
		if l.Valid || nebulaerrors.KindOf(l.Err) == nebulaerrors.HashMismatch {
			report.ShardsAvailable++
		}

		if l.Valid {
			report.ShardsValid++
			shardMap[l.Index] = l.Bytes
			availableIndices = append(availableIndices, l.Index)
			continue
		}
		// A present-but-hash-mismatched shard is still usable as a known
		// corrupt position for errata correction during decode, but it is
		// not a member of V (the valid set) the feasibility gate runs
		// over: feasibility reflects only shards the integrity check
		// actually passed.
		if nebulaerrors.KindOf(l.Err) == nebulaerrors.HashMismatch {
			shardMap[l.Index] = l.Bytes
			corrupt[l.Index] = true
		}
	}

	feasibility := Analyze(availableIndices, m.RS.DataShards, m.RS.TotalShards)
	report.Feasible = feasibility.Feasible
	if !feasibility.Feasible {
		err := nebulaerrors.New(nebulaerrors.Infeasible, "need %d valid shards, have %d", m.RS.DataShards, feasibility.Available)
		report.Error = err.Error()
		return report, nil, err
	}

	shardSize, err := uniformShardSize(loaded)
	if err != nil {
		report.Error = err.Error()
		return report, nil, err
	}

	params := rs.Params{K: m.RS.DataShards, N: m.RS.TotalShards, ShardSize: shardSize}
	rsOut, corrected, err := rs.Decode(shardMap, corrupt, params, int(m.OriginalSizeBytes))
	if err != nil {
		report.Error = err.Error()
		return report, nil, err
	}
	report.RSErrorsCorrected = corrected

	plaintext := rsOut
	if m.Encryption != nil {
		iv, ivErr := hex.DecodeString(m.Encryption.IV)
		if ivErr != nil {
			err := nebulaerrors.Wrap(nebulaerrors.ManifestInvalid, ivErr, "decoding encryption.iv")
			report.Error = err.Error()
			return report, nil, err
		}
		var tag []byte
		if m.Encryption.Tag != "" {
			tag, err = hex.DecodeString(m.Encryption.Tag)
			if err != nil {
				wrapped := nebulaerrors.Wrap(nebulaerrors.ManifestInvalid, err, "decoding encryption.tag")
				report.Error = wrapped.Error()
				return report, nil, wrapped
			}
		}

		opened, openErr := aead.Open(m.Encryption.Algorithm, opts.Key, iv, tag, rsOut)
		if openErr != nil {
			report.Error = openErr.Error()
			return report, nil, openErr
		}
		plaintext = opened
		report.Decrypted = true
	}

	report.ReconstructedSize = int64(len(plaintext))

	if opts.VerifyHash && m.OriginalHash != "" {
		sum := sha256.Sum256(plaintext)
		got := hex.EncodeToString(sum[:])
		report.ReconstructedHash = got
		if got != m.OriginalHash {
			err := nebulaerrors.New(nebulaerrors.HashMismatch, "reconstructed hash %s != declared %s", got, m.OriginalHash)
			report.Error = err.Error()
			return report, nil, err
		}
		report.HashVerified = true
	}

	report.Success = true
	return report, plaintext, nil
}

// uniformShardSize derives the common shard size from the valid shards,
// failing with ShardSizeMismatch if they disagree.
func uniformShardSize(loaded []shard.Loaded) (int, error) {
	size := -1
	for _, l := range loaded {
		if !l.Valid {
			continue
		}
		if size == -1 {
			size = len(l.Bytes)
			continue
		}
		if len(l.Bytes) != size {
			return 0, nebulaerrors.New(nebulaerrors.ShardSizeMismatch,
				"shard %d has size %d, expected %d", l.Index, len(l.Bytes), size)
		}
	}
	if size == -1 {
		return 0, nebulaerrors.New(nebulaerrors.ShardSizeMismatch, "no valid shards to derive shard size from")
	}
	return size, nil
}
