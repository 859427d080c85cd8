package merkle_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/nebula-labs/nebula-reconstruct/internal/merkle"
)

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestRootSingleLeafIsVerbatim(t *testing.T) {
	h := hashHex("shard-0")
	root, err := merkle.Root([]string{h})
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != h {
		t.Fatalf("root = %s, want %s", root, h)
	}
}

func TestRootOrderSensitive(t *testing.T) {
	leaves := []string{hashHex("a"), hashHex("b"), hashHex("c"), hashHex("d")}
	reversed := []string{leaves[3], leaves[2], leaves[1], leaves[0]}

	r1, err := merkle.Root(leaves)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	r2, err := merkle.Root(reversed)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if r1 == r2 {
		t.Fatalf("root should differ when leaf order differs, got same root %s", r1)
	}
}

func TestRootOddLayerDuplicatesLast(t *testing.T) {
	leaves := []string{hashHex("a"), hashHex("b"), hashHex("c")}
	withDuplicate := []string{leaves[0], leaves[1], leaves[2], leaves[2]}

	r1, err := merkle.Root(leaves)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	r2, err := merkle.Root(withDuplicate)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("odd-length root %s should equal explicit-duplicate root %s", r1, r2)
	}
}

func TestRootEmptyLeavesErrors(t *testing.T) {
	if _, err := merkle.Root(nil); err == nil {
		t.Fatal("expected error for empty leaves")
	}
}

func TestRootDeterministic(t *testing.T) {
	leaves := []string{hashHex("a"), hashHex("b"), hashHex("c"), hashHex("d"), hashHex("e")}
	r1, err := merkle.Root(leaves)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	r2, err := merkle.Root(leaves)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("Root is not deterministic: %s != %s", r1, r2)
	}
}
