package resource

// Hash-based resource identification for dynamic registration inside a
// node's execute context. Grounded on the FNV-1a + boost-style
// hash_combine scheme used throughout the source material's resource hash
// header: a two-part structure (scope hash + member hash). This file only
// computes the hashes; the package keeps no registry of resources by scope
// and releases nothing by scope hash.

const (
	fnvOffsetBasis uint64 = 14695981039346656037
	fnvPrime       uint64 = 1099511628211
)

// HashString computes the FNV-1a hash of s.
func HashString(s string) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// CombineHash folds h2 into h1 using a boost-style hash_combine.
func CombineHash(h1, h2 uint64) uint64 {
	return h1 ^ (h2 + 0x9e3779b9 + (h1 << 6) + (h1 >> 2))
}

// ScopeHash identifies an allocation scope: a node instance plus a bundle
// (array) index within that instance. It is a plain identifier; no release
// is tied to it.
type ScopeHash uint64

// ComputeScopeHash derives a ScopeHash from a node instance id and a bundle
// index.
func ComputeScopeHash(nodeInstanceID uint64, bundleIndex uint32) ScopeHash {
	return ScopeHash(CombineHash(nodeInstanceID, uint64(bundleIndex)))
}

// MemberHash identifies a specific resource within a scope by name.
type MemberHash uint64

// ComputeMemberHash hashes a member/variable name.
func ComputeMemberHash(name string) MemberHash {
	return MemberHash(HashString(name))
}

// FullHash uniquely identifies a resource: its scope combined with its
// member name.
type FullHash uint64

// ComputeFullHash combines a scope and member hash into a single resource
// identifier.
func ComputeFullHash(scope ScopeHash, member MemberHash) FullHash {
	return FullHash(CombineHash(uint64(scope), uint64(member)))
}

// Key is the graph-level identity of a resource: the node instance that
// owns it, the slot index it was declared on, and its array index within
// that slot (0 for non-array slots). Per spec, identity is never a runtime
// string — Key is the stable id a consumer caches and compares across
// frames.
type Key struct {
	OwnerNodeID uint64
	SlotIndex   uint32
	ArrayIndex  uint32
}

// Hash folds a Key down to a single uint64, suitable for use as a map key
// or for cross-referencing with a ScopeHash/FullHash.
func (k Key) Hash() uint64 {
	h := CombineHash(k.OwnerNodeID, uint64(k.SlotIndex))
	return CombineHash(h, uint64(k.ArrayIndex))
}
