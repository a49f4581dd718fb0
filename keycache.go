// keycache.go: Read-mostly cache of derived keys keyed by input fingerprint.
//
// Derivation is memory-hard and slow by design; callers encrypting many
// payloads under the same password and nonce would otherwise pay the Argon2id
// cost per call. The cache trades a bounded amount of key material held in
// memory for that cost, and wipes every entry on eviction and shutdown.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// cacheEntry is one retained derivation result. The key slice is owned by
// the cache; lookups hand out copies so eviction can never invalidate an
// in-flight operation.
type cacheEntry struct {
	key       []byte
	createdAt time.Time
}

// KeyCache is a thread-safe cache of derived keys.
//
// Reads proceed concurrently under a read lock. A miss derives outside any
// lock and commits under the write lock with insert-if-absent semantics: two
// racing misses may both derive, but only one result is retained and the
// loser's spare copy is wiped. Holding the write lock across an Argon2id
// derivation would serialize unrelated operations, so the occasional wasted
// derivation is the accepted cost.
//
// The zero value is not usable; construct with NewKeyCache. A nil *KeyCache
// is tolerated by Derive and degrades to uncached derivation.
type KeyCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	params  *KDFParams
}

// NewKeyCache creates an empty key cache using default KDF parameters.
func NewKeyCache() *KeyCache {
	return NewKeyCacheWithParams(nil)
}

// NewKeyCacheWithParams creates a key cache whose derivations use the given
// Argon2id parameters. Nil params select the secure defaults.
func NewKeyCacheWithParams(params *KDFParams) *KeyCache {
	return &KeyCache{
		entries: make(map[string]*cacheEntry),
		params:  params,
	}
}

// Derive returns the derived key for (password, salt, nonce, keyBits),
// deriving and caching it on first use. The returned slice is a fresh copy
// owned by the caller, who should Zeroize it after use.
//
// On a nil receiver the call degrades to plain uncached derivation, so a
// missing cache can never fail an operation.
func (kc *KeyCache) Derive(password, salt, nonce []byte, keyBits int) ([]byte, error) {
	if kc == nil {
		return DeriveKey(password, salt, nonce, keyBits, nil)
	}

	fp := cacheFingerprint(password, salt, nonce, keyBits)

	kc.mu.RLock()
	entry, ok := kc.entries[fp]
	if ok {
		out := make([]byte, len(entry.key))
		copy(out, entry.key)
		kc.mu.RUnlock()
		return out, nil
	}
	kc.mu.RUnlock()

	derived, err := DeriveKey(password, salt, nonce, keyBits, kc.params)
	if err != nil {
		return nil, err
	}

	kc.mu.Lock()
	if existing, ok := kc.entries[fp]; ok {
		// Lost the race: keep the committed entry, discard ours.
		out := make([]byte, len(existing.key))
		copy(out, existing.key)
		kc.mu.Unlock()
		Zeroize(derived)
		return out, nil
	}
	kc.entries[fp] = &cacheEntry{
		key:       derived,
		createdAt: timecache.CachedTime().UTC(),
	}
	out := make([]byte, len(derived))
	copy(out, derived)
	kc.mu.Unlock()
	return out, nil
}

// Evict removes and wipes the entry for (password, salt, nonce, keyBits).
// Evicting a missing entry is a no-op.
func (kc *KeyCache) Evict(password, salt, nonce []byte, keyBits int) {
	if kc == nil {
		return
	}
	fp := cacheFingerprint(password, salt, nonce, keyBits)

	kc.mu.Lock()
	defer kc.mu.Unlock()
	if entry, ok := kc.entries[fp]; ok {
		Zeroize(entry.key)
		delete(kc.entries, fp)
	}
}

// Len reports the number of retained entries.
func (kc *KeyCache) Len() int {
	if kc == nil {
		return 0
	}
	kc.mu.RLock()
	defer kc.mu.RUnlock()
	return len(kc.entries)
}

// EntryAge returns how long ago the entry for the given inputs was
// committed, and whether it exists.
func (kc *KeyCache) EntryAge(password, salt, nonce []byte, keyBits int) (time.Duration, bool) {
	if kc == nil {
		return 0, false
	}
	fp := cacheFingerprint(password, salt, nonce, keyBits)

	kc.mu.RLock()
	defer kc.mu.RUnlock()
	entry, ok := kc.entries[fp]
	if !ok {
		return 0, false
	}
	return timecache.CachedTime().UTC().Sub(entry.createdAt), true
}

// Close wipes every retained key and empties the cache. The cache remains
// usable afterwards; subsequent misses re-derive.
func (kc *KeyCache) Close() {
	if kc == nil {
		return
	}
	kc.mu.Lock()
	defer kc.mu.Unlock()
	for fp, entry := range kc.entries {
		Zeroize(entry.key)
		delete(kc.entries, fp)
	}
}
