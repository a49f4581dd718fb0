// config.go: Per-operation configuration and key material for the engine.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Supported key lengths in bits.
const (
	KeyLength256 = 256
	KeyLength512 = 512
)

// Profile selects a preset combination of key length, rounds, and thread
// strategy. ProfileCustom leaves every field to the caller.
type Profile int

const (
	// ProfileStandard balances throughput and security margin.
	ProfileStandard Profile = iota
	// ProfileSecure increases the round count over Standard.
	ProfileSecure
	// ProfileMax uses the widest key and the most rounds.
	ProfileMax
	// ProfileCustom applies no preset; the caller sets every field.
	ProfileCustom
)

// SboxSource selects the seed material for substitution table generation.
// Changing the source with the same password and nonce yields an unrelated
// permutation.
type SboxSource int

const (
	// SboxCombined seeds the table from both the derived key and the nonce.
	SboxCombined SboxSource = iota
	// SboxPasswordDerived seeds the table from the derived key only.
	SboxPasswordDerived
	// SboxNonceDerived seeds the table from the nonce only.
	SboxNonceDerived
)

// ThreadMode selects how the pipeline sizes its worker pool.
type ThreadMode int

const (
	// ThreadAuto scales with core count and current load, leaving headroom.
	ThreadAuto ThreadMode = iota
	// ThreadFull claims every reported core.
	ThreadFull
	// ThreadLow caps workers to a small fraction of the cores.
	ThreadLow
	// ThreadCustom pins the worker count to Config.Workers.
	ThreadCustom
)

// Config holds the immutable per-operation parameters.
//
// The zero value is not valid; construct via NewConfig or FromProfile and
// the With* setters. Config is a value type: setters return a modified copy,
// so a Config in flight is never mutated by another goroutine.
type Config struct {
	// KeyLength is the derived key length in bits: 256 or 512.
	KeyLength int

	// Rounds is the number of transform rounds, at least 1. There is no
	// upper bound; cost grows linearly.
	Rounds int

	// Profile records which preset produced this config.
	Profile Profile

	// SboxSource selects the substitution table seed material.
	SboxSource SboxSource

	// ThreadMode selects the worker planning strategy.
	ThreadMode ThreadMode

	// Workers is the pinned worker count for ThreadCustom.
	Workers int

	// RecoveryKey embeds a salt-independent recovery slot in the output.
	// Requires WrapAll.
	RecoveryKey bool

	// WrapAll bundles salt, nonce, and version into a single self-describing
	// record. When false the caller manages them out-of-band and the output
	// is ciphertext plus tag only.
	WrapAll bool

	// DummyData appends randomized trailer padding to obscure the true
	// payload size. Requires WrapAll.
	DummyData bool

	// Benchmark logs operation timing at Info level.
	Benchmark bool
}

// NewConfig returns the Standard profile configuration.
func NewConfig() Config {
	return FromProfile(ProfileStandard)
}

// FromProfile returns the preset configuration for a profile.
func FromProfile(p Profile) Config {
	switch p {
	case ProfileSecure:
		return Config{
			KeyLength:  KeyLength256,
			Rounds:     6,
			Profile:    ProfileSecure,
			SboxSource: SboxCombined,
			ThreadMode: ThreadAuto,
		}
	case ProfileMax:
		return Config{
			KeyLength:  KeyLength512,
			Rounds:     8,
			Profile:    ProfileMax,
			SboxSource: SboxCombined,
			ThreadMode: ThreadFull,
		}
	default:
		return Config{
			KeyLength:  KeyLength256,
			Rounds:     4,
			Profile:    ProfileStandard,
			SboxSource: SboxCombined,
			ThreadMode: ThreadAuto,
		}
	}
}

// WithKeyLength sets the key length in bits and marks the profile custom.
func (c Config) WithKeyLength(bits int) Config {
	c.KeyLength = bits
	c.Profile = ProfileCustom
	return c
}

// WithRounds sets the round count and marks the profile custom.
func (c Config) WithRounds(n int) Config {
	c.Rounds = n
	c.Profile = ProfileCustom
	return c
}

// WithSbox sets the substitution table seed source.
func (c Config) WithSbox(src SboxSource) Config {
	c.SboxSource = src
	return c
}

// WithThreads sets the thread planning mode. For ThreadCustom, workers pins
// the pool size; it is ignored for other modes.
func (c Config) WithThreads(mode ThreadMode, workers int) Config {
	c.ThreadMode = mode
	c.Workers = workers
	return c
}

// WithRecoveryKey enables the salt-independent recovery slot.
func (c Config) WithRecoveryKey(on bool) Config {
	c.RecoveryKey = on
	return c
}

// WithWrapAll enables the self-describing output record.
func (c Config) WithWrapAll(on bool) Config {
	c.WrapAll = on
	return c
}

// WithDummyData enables randomized trailer padding.
func (c Config) WithDummyData(on bool) Config {
	c.DummyData = on
	return c
}

// WithBenchmark enables operation timing logs.
func (c Config) WithBenchmark(on bool) Config {
	c.Benchmark = on
	return c
}

// Validate checks the configuration for combinations the engine cannot
// honor. It is called by the engine before any transform work begins.
func (c Config) Validate() error {
	if c.KeyLength != KeyLength256 && c.KeyLength != KeyLength512 {
		richErr := goerrors.New(ErrCodeBadConfig, fmt.Sprintf("key length must be 256 or 512 bits, got %d", c.KeyLength))
		return fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}
	if c.Rounds < 1 {
		richErr := goerrors.New(ErrCodeBadConfig, fmt.Sprintf("round count must be at least 1, got %d", c.Rounds))
		return fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}
	if c.ThreadMode == ThreadCustom && c.Workers < 1 {
		richErr := goerrors.New(ErrCodeBadConfig, "custom thread mode requires at least 1 worker")
		return fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}
	if c.RecoveryKey && !c.WrapAll {
		richErr := goerrors.New(ErrCodeBadConfig, "recovery key requires the wrapped output record")
		return fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}
	if c.DummyData && !c.WrapAll {
		richErr := goerrors.New(ErrCodeBadConfig, "dummy data padding requires the wrapped output record")
		return fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}
	return nil
}

// keyBytes returns the configured key length in bytes.
func (c Config) keyBytes() int {
	return c.KeyLength / 8
}

// KeyMaterial carries the caller-supplied secret inputs for one operation.
//
// Nonce MUST be unique per password; reuse degrades keystream uniqueness and
// is not detected by the engine. Salt may be empty, in which case the nonce
// doubles as the salt.
type KeyMaterial struct {
	Password []byte
	Salt     []byte
	Nonce    []byte
}

// effectiveSalt returns the salt, defaulting to the nonce when unset.
func (km KeyMaterial) effectiveSalt() []byte {
	if len(km.Salt) == 0 {
		return km.Nonce
	}
	return km.Salt
}

// validate rejects degenerate key material before any derivation work.
func (km KeyMaterial) validate() error {
	if len(km.Password) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "password cannot be empty")
		return fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	if len(km.Nonce) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "nonce cannot be empty")
		return fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	return nil
}
