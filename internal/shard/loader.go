// Package shard loads shard files declared by a manifest and checks their
// SHA-256 hash against the manifest's declared value, the way the reference
// service's verifyFileIntegrity checked CRC64 hashes over downloaded shard
// data — adapted here to SHA-256 over files in a caller-supplied directory
// rather than CRC64 over network blobs.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/nebula-labs/nebula-reconstruct/internal/domain"
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
)

// Loaded is the outcome of resolving, reading, and hash-checking one shard
// descriptor.
type Loaded struct {
	Index        int
	Path         string
	ExpectedHash string
	ActualHash   string
	Bytes        []byte
	Valid        bool
	Err          error
}

// Load resolves each descriptor's path against dir, reads the file, and
// checks its SHA-256 against the declared hash. It never returns early: one
// bad shard doesn't stop the rest from being loaded, since the caller
// (the reconstruction orchestrator) decides whether the valid subset is
// still sufficient.
func Load(dir string, descriptors []domain.ShardDescriptor) []Loaded {
	results := make([]Loaded, len(descriptors))
	for i, d := range descriptors {
		results[i] = loadOne(dir, d)
	}
	return results
}

func loadOne(dir string, d domain.ShardDescriptor) Loaded {
	path := filepath.Join(dir, d.Path)
	result := Loaded{Index: d.Index, Path: path, ExpectedHash: d.Hash}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Err = nebulaerrors.New(nebulaerrors.MissingFile, "shard %d: %s not found", d.Index, path)
		} else {
			result.Err = nebulaerrors.Wrap(nebulaerrors.MissingFile, err, "shard %d: reading %s", d.Index, path)
		}
		log.Debugf("shard %d: %v", d.Index, result.Err)
		return result
	}

	sum := sha256.Sum256(data)
	result.ActualHash = hex.EncodeToString(sum[:])
	result.Bytes = data

	if result.ActualHash != d.Hash {
		result.Err = nebulaerrors.New(nebulaerrors.HashMismatch, "shard %d: expected %s, got %s", d.Index, d.Hash, result.ActualHash)
		log.Debugf("shard %d failed integrity check: %v", d.Index, result.Err)
		return result
	}

	result.Valid = true
	return result
}
