// kdf_test.go: Test cases for master key derivation.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/atomcrypte/atomcrypte"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("test-password")
	salt := []byte("test-salt-value-0123456789abcdef")
	nonce := []byte("test-nonce-16byt")
	params := atomcrypte.FastKDFParams()

	first, err := atomcrypte.DeriveKey(password, salt, nonce, 256, params)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	second, err := atomcrypte.DeriveKey(password, salt, nonce, 256, params)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Same inputs must derive the same key")
	}
	if len(first) != 32 {
		t.Errorf("Expected 32-byte key for 256 bits, got %d", len(first))
	}
}

func TestDeriveKey_KeyLengths(t *testing.T) {
	password := []byte("test-password")
	salt := []byte("salt")
	nonce := []byte("nonce")
	params := atomcrypte.FastKDFParams()

	key256, err := atomcrypte.DeriveKey(password, salt, nonce, 256, params)
	if err != nil {
		t.Fatalf("Failed to derive 256-bit key: %v", err)
	}
	key512, err := atomcrypte.DeriveKey(password, salt, nonce, 512, params)
	if err != nil {
		t.Fatalf("Failed to derive 512-bit key: %v", err)
	}
	if len(key512) != 64 {
		t.Errorf("Expected 64-byte key for 512 bits, got %d", len(key512))
	}
	if bytes.Equal(key256, key512[:32]) {
		t.Error("512-bit key must not contain the 256-bit key as a prefix")
	}

	if _, err := atomcrypte.DeriveKey(password, salt, nonce, 128, params); !errors.Is(err, atomcrypte.ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength for 128 bits, got %v", err)
	}
}

func TestDeriveKey_InputSensitivity(t *testing.T) {
	params := atomcrypte.FastKDFParams()
	base, err := atomcrypte.DeriveKey([]byte("password"), []byte("salt"), []byte("nonce"), 256, params)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}

	variants := []struct {
		name                  string
		password, salt, nonce []byte
	}{
		{"password", []byte("passworD"), []byte("salt"), []byte("nonce")},
		{"salt", []byte("password"), []byte("salT"), []byte("nonce")},
		{"nonce", []byte("password"), []byte("salt"), []byte("noncE")},
	}
	for _, v := range variants {
		key, err := atomcrypte.DeriveKey(v.password, v.salt, v.nonce, 256, params)
		if err != nil {
			t.Fatalf("%s: failed to derive key: %v", v.name, err)
		}
		if bytes.Equal(base, key) {
			t.Errorf("Changing the %s must change the key", v.name)
		}
	}
}

func TestDeriveKey_EmptyInputs(t *testing.T) {
	params := atomcrypte.FastKDFParams()
	if _, err := atomcrypte.DeriveKey(nil, []byte("salt"), []byte("nonce"), 256, params); !errors.Is(err, atomcrypte.ErrWeakInput) {
		t.Errorf("Expected ErrWeakInput for empty password, got %v", err)
	}
	if _, err := atomcrypte.DeriveKey([]byte("password"), nil, []byte("nonce"), 256, params); !errors.Is(err, atomcrypte.ErrWeakInput) {
		t.Errorf("Expected ErrWeakInput for empty salt, got %v", err)
	}
}

func TestDeriveKey_NilParamsUsesDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("default Argon2id parameters are expensive")
	}
	key, err := atomcrypte.DeriveKey([]byte("password"), []byte("salt"), []byte("nonce"), 256, nil)
	if err != nil {
		t.Fatalf("Failed to derive key with defaults: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("Expected 32-byte key, got %d", len(key))
	}
}

func TestDeriveRecoveryKey_Properties(t *testing.T) {
	password := []byte("password")
	nonce := []byte("nonce-material")

	rk, err := atomcrypte.DeriveRecoveryKey(password, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive recovery key: %v", err)
	}
	if len(rk) != 32 {
		t.Errorf("Expected 32-byte recovery key, got %d", len(rk))
	}

	again, err := atomcrypte.DeriveRecoveryKey(password, nonce, 256)
	if err != nil {
		t.Fatalf("Failed to derive recovery key: %v", err)
	}
	if !bytes.Equal(rk, again) {
		t.Error("Recovery key derivation must be deterministic")
	}

	// The recovery key uses the nonce as salt, so it must differ from the
	// master key for the same inputs.
	master, err := atomcrypte.DeriveKey(password, nonce, nonce, 256, nil)
	if err != nil {
		t.Fatalf("Failed to derive master key: %v", err)
	}
	if bytes.Equal(rk, master) {
		t.Error("Recovery key must differ from the master key")
	}

	if _, err := atomcrypte.DeriveRecoveryKey(nil, nonce, 256); !errors.Is(err, atomcrypte.ErrWeakInput) {
		t.Errorf("Expected ErrWeakInput for empty password, got %v", err)
	}
	if _, err := atomcrypte.DeriveRecoveryKey(password, nonce, 100); !errors.Is(err, atomcrypte.ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
}
