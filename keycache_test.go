// keycache_test.go: Test cases for the derived key cache.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/atomcrypte/atomcrypte"
)

func TestKeyCache_HitReturnsSameKey(t *testing.T) {
	cache := atomcrypte.NewKeyCacheWithParams(atomcrypte.FastKDFParams())
	defer cache.Close()
	password := []byte("password")
	salt := []byte("salt")
	nonce := []byte("nonce")

	first, err := cache.Derive(password, salt, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", cache.Len())
	}

	second, err := cache.Derive(password, salt, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive on hit: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Cache hit must return the same key")
	}

	// Returned slices are caller-owned copies; wiping one must not corrupt
	// the cached entry.
	atomcrypte.Zeroize(first)
	third, err := cache.Derive(password, salt, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive after wipe: %v", err)
	}
	if !bytes.Equal(second, third) {
		t.Error("Wiping a returned key corrupted the cache entry")
	}
}

func TestKeyCache_DistinctInputsDistinctEntries(t *testing.T) {
	cache := atomcrypte.NewKeyCacheWithParams(atomcrypte.FastKDFParams())
	defer cache.Close()

	key256, err := cache.Derive([]byte("p"), []byte("s"), []byte("n"), 256)
	if err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	key512, err := cache.Derive([]byte("p"), []byte("s"), []byte("n"), 512)
	if err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries for distinct key lengths, got %d", cache.Len())
	}
	if bytes.Equal(key256, key512[:32]) {
		t.Error("Entries for different key lengths must not alias")
	}

	// Length-prefixed fingerprinting keeps ("ab","c") and ("a","bc") apart.
	if _, err := cache.Derive([]byte("ab"), []byte("c"), []byte("n"), 256); err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	if _, err := cache.Derive([]byte("a"), []byte("bc"), []byte("n"), 256); err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	if cache.Len() != 4 {
		t.Errorf("Expected 4 entries, got %d", cache.Len())
	}
}

func TestKeyCache_Evict(t *testing.T) {
	cache := atomcrypte.NewKeyCacheWithParams(atomcrypte.FastKDFParams())
	defer cache.Close()
	password := []byte("password")
	salt := []byte("salt")
	nonce := []byte("nonce")

	if _, err := cache.Derive(password, salt, nonce, 256); err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	if _, ok := cache.EntryAge(password, salt, nonce, 256); !ok {
		t.Error("Expected entry age for cached key")
	}

	cache.Evict(password, salt, nonce, 256)
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after evict, got %d entries", cache.Len())
	}
	if _, ok := cache.EntryAge(password, salt, nonce, 256); ok {
		t.Error("Expected no entry age after evict")
	}

	// Evicting again is a no-op.
	cache.Evict(password, salt, nonce, 256)
}

func TestKeyCache_Close(t *testing.T) {
	cache := atomcrypte.NewKeyCacheWithParams(atomcrypte.FastKDFParams())
	if _, err := cache.Derive([]byte("p"), []byte("s"), []byte("n"), 256); err != nil {
		t.Fatalf("Failed to derive: %v", err)
	}
	cache.Close()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after close, got %d entries", cache.Len())
	}

	// Closed caches keep working; misses re-derive.
	key, err := cache.Derive([]byte("p"), []byte("s"), []byte("n"), 256)
	if err != nil {
		t.Fatalf("Failed to derive after close: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("Expected 32-byte key, got %d", len(key))
	}
}

func TestKeyCache_NilReceiver(t *testing.T) {
	var cache *atomcrypte.KeyCache

	key, err := cache.Derive([]byte("p"), []byte("s"), []byte("n"), 256)
	if err != nil {
		t.Fatalf("Nil cache must fall back to plain derivation: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("Expected 32-byte key, got %d", len(key))
	}
	if cache.Len() != 0 {
		t.Error("Nil cache must report zero entries")
	}
	cache.Evict([]byte("p"), []byte("s"), []byte("n"), 256)
	cache.Close()
}

func TestKeyCache_ConcurrentDerive(t *testing.T) {
	cache := atomcrypte.NewKeyCacheWithParams(atomcrypte.FastKDFParams())
	defer cache.Close()
	password := []byte("password")
	salt := []byte("salt")
	nonce := []byte("nonce")

	reference, err := cache.Derive(password, salt, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive reference: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := cache.Derive(password, salt, nonce, 256)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(key, reference) {
				errs <- fmt.Errorf("concurrent derive returned a different key")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent derive failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry after concurrent derives, got %d", cache.Len())
	}
}
