// Package rs implements the systematic Reed-Solomon codec over GF(2^8):
// encode splits a byte stream into k data shards and n-k parity shards;
// decode reconstructs the original bytes from any sufficient subset.
//
// Each byte position across the n shards forms an independent length-n
// codeword (see gf_codec.go); encode and decode simply drive that
// single-codeword machinery across every byte position of a shard set.
package rs

import (
	"sync"

	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
)

// Params describes one encoded set: k data shards, n total shards (so
// n-k parity shards), each shard shardSize bytes long.
type Params struct {
	K         int
	N         int
	ShardSize int
}

// maxWorkers bounds how many goroutines Decode's erasure path spreads byte
// columns across. Columns are independent (see poly.go/gf_codec.go), so no
// synchronization beyond the worker pool itself is needed.
const maxWorkers = 8

// Encode pads plaintext with 0x00 to a multiple of k, splits it into k data
// shards, and computes n-k parity shards so that every byte position forms
// a valid length-n RS codeword.
func Encode(plaintext []byte, k, n int) ([][]byte, Params, error) {
	if k < 1 {
		return nil, Params{}, nebulaerrors.New(nebulaerrors.InvalidParams, "k must be >= 1, got %d", k)
	}
	if n <= k {
		return nil, Params{}, nebulaerrors.New(nebulaerrors.InvalidParams, "n must be > k, got n=%d k=%d", n, k)
	}
	if n > 255 {
		return nil, Params{}, nebulaerrors.New(nebulaerrors.InvalidParams, "n must be <= 255, got %d", n)
	}

	shardSize := (len(plaintext) + k - 1) / k
	if shardSize == 0 {
		shardSize = 1
	}
	padded := make([]byte, shardSize*k)
	copy(padded, plaintext)

	shards := make([][]byte, n)
	for i := range shards {
		shards[i] = make([]byte, shardSize)
	}
	for i := 0; i < k; i++ {
		copy(shards[i], padded[i*shardSize:(i+1)*shardSize])
	}

	gen := generatorPoly(n - k)
	for p := 0; p < shardSize; p++ {
		msgIn := make([]byte, k)
		for i := 0; i < k; i++ {
			msgIn[i] = shards[i][p]
		}
		codeword := encodeSymbol(msgIn, gen)
		for i := k; i < n; i++ {
			shards[i][p] = codeword[i]
		}
	}

	return shards, Params{K: k, N: n, ShardSize: shardSize}, nil
}

// Decode reconstructs the original plaintext from a partial map of shard
// index to shard bytes, truncated to originalSize. corrupt marks shard
// indices present in shardMap that the caller suspects are wrong (a
// hash-mismatched-but-present shard, as opposed to a genuinely absent one);
// corrupt positions consume two units of the n-k redundancy budget apiece,
// erasures (absent indices) consume one, matching the accounting described
// in the decode contract. The number of positions actually corrected by
// field arithmetic (i.e. not just filled in as absent) is returned as the
// second value.
func Decode(shardMap map[int][]byte, corrupt map[int]bool, params Params, originalSize int) ([]byte, int, error) {
	if len(shardMap) < params.K {
		return nil, 0, nebulaerrors.New(nebulaerrors.InsufficientShards,
			"need at least %d shards, have %d", params.K, len(shardMap))
	}

	if fastPathEligible(shardMap, corrupt, params.K) {
		return assembleFastPath(shardMap, params, originalSize), 0, nil
	}

	erasures, correctedCount, err := classifyPositions(shardMap, corrupt, params)
	if err != nil {
		return nil, 0, err
	}

	dataShards, err := decodeErasurePath(shardMap, erasures, params)
	if err != nil {
		return nil, 0, err
	}

	plaintext := make([]byte, 0, params.K*params.ShardSize)
	for i := 0; i < params.K; i++ {
		plaintext = append(plaintext, dataShards[i]...)
	}
	if originalSize < len(plaintext) {
		plaintext = plaintext[:originalSize]
	}
	return plaintext, correctedCount, nil
}

func fastPathEligible(shardMap map[int][]byte, corrupt map[int]bool, k int) bool {
	for i := 0; i < k; i++ {
		if _, ok := shardMap[i]; !ok {
			return false
		}
		if corrupt[i] {
			return false
		}
	}
	return true
}

func assembleFastPath(shardMap map[int][]byte, params Params, originalSize int) []byte {
	plaintext := make([]byte, 0, params.K*params.ShardSize)
	for i := 0; i < params.K; i++ {
		plaintext = append(plaintext, shardMap[i]...)
	}
	if originalSize < len(plaintext) {
		plaintext = plaintext[:originalSize]
	}
	return plaintext
}

// classifyPositions derives the erasure-position list (every index 0..n-1
// not present, or present but flagged corrupt) and validates the
// redundancy budget.
func classifyPositions(shardMap map[int][]byte, corrupt map[int]bool, params Params) (positions []int, correctedCount int, err error) {
	budget := 0
	for i := 0; i < params.N; i++ {
		bytes, present := shardMap[i]
		switch {
		case !present:
			positions = append(positions, i)
			budget++
		case corrupt[i] && len(bytes) > 0:
			positions = append(positions, i)
			budget += 2
			correctedCount++
		}
	}
	if budget > params.N-params.K {
		return nil, 0, nebulaerrors.New(nebulaerrors.InsufficientShards,
			"redundancy budget exceeded: need %d, have %d", budget, params.N-params.K)
	}
	return positions, correctedCount, nil
}

func decodeErasurePath(shardMap map[int][]byte, erasures []int, params Params) ([][]byte, error) {
	nsym := params.N - params.K
	dataShards := make([][]byte, params.K)
	for i := range dataShards {
		dataShards[i] = make([]byte, params.ShardSize)
	}

	columns := make(chan int)
	results := make(chan error, params.ShardSize)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for p := range columns {
			codeword := make([]byte, params.N)
			for i := 0; i < params.N; i++ {
				if b, ok := shardMap[i]; ok {
					codeword[i] = b[p]
				}
			}
			corrected, err := decodeKnownPositions(codeword, nsym, erasures)
			if err != nil {
				results <- err
				continue
			}
			for i := 0; i < params.K; i++ {
				dataShards[i][p] = corrected[i]
			}
			results <- nil
		}
	}

	workers := maxWorkers
	if params.ShardSize < workers {
		workers = params.ShardSize
	}
	if workers < 1 {
		workers = 1
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}
	go func() {
		for p := 0; p < params.ShardSize; p++ {
			columns <- p
		}
		close(columns)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for err := range results {
		if err != nil {
			return nil, err
		}
	}

	return dataShards, nil
}
