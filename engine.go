// engine.go: Top-level encryption engine tying derivation, substitution,
// transform, authentication, and record encoding together.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"fmt"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/sirupsen/logrus"
)

// Engine performs encryption and decryption operations. It owns a key cache
// shared across operations and a logger for benchmark output. An Engine is
// safe for concurrent use.
type Engine struct {
	cache *KeyCache
	log   *logrus.Logger
	snap  CPUSnapshot

	cacheSet  bool
	kdfParams *KDFParams
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the logger used for benchmark and diagnostic output.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithCache sets the key cache. Pass nil to disable caching entirely; every
// operation then pays the full derivation cost.
func WithCache(cache *KeyCache) Option {
	return func(e *Engine) {
		e.cache = cache
		e.cacheSet = true
	}
}

// WithKDFParams sets the Argon2id parameters used by the engine's own cache.
// Ignored when WithCache supplies a cache.
func WithKDFParams(params *KDFParams) Option {
	return func(e *Engine) { e.kdfParams = params }
}

// WithCPUSnapshot overrides hardware detection. Intended for tests that need
// deterministic execution plans.
func WithCPUSnapshot(snap CPUSnapshot) Option {
	return func(e *Engine) { e.snap = snap }
}

// New creates an Engine. Without options it detects the local CPU, creates
// its own key cache with default derivation parameters, and logs to a
// default logrus logger.
func New(opts ...Option) *Engine {
	e := &Engine{snap: DetectCPU()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.New()
	}
	if !e.cacheSet {
		e.cache = NewKeyCacheWithParams(e.kdfParams)
	}
	return e
}

// Result is the outcome of a successful Encrypt call.
type Result struct {
	// Output is the ciphertext: a self-describing record when WrapAll is
	// set, otherwise ciphertext followed by the authentication tag.
	Output []byte

	// RecoveryKey is the derived recovery key when the configuration asked
	// for one, nil otherwise. The caller owns it and should wipe it with
	// Zeroize once stored.
	RecoveryKey []byte

	// Elapsed is the wall-clock duration of the operation.
	Elapsed time.Duration
}

// Encrypt encrypts plaintext under the given configuration and key material.
//
// Empty plaintext is replaced by random filler so the output never reveals
// that nothing was encrypted; Decrypt restores the empty input. Validation
// runs before any transform work, so an error means no partial output was
// produced.
func (e *Engine) Encrypt(cfg Config, km KeyMaterial, plaintext []byte) (*Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := km.validate(); err != nil {
		return nil, err
	}

	payload := plaintext
	filler := false
	if len(plaintext) == 0 {
		var err error
		payload, err = newFiller()
		if err != nil {
			return nil, err
		}
		filler = true
		defer Zeroize(payload)
	}

	master, err := e.cache.Derive(km.Password, km.effectiveSalt(), km.Nonce, cfg.KeyLength)
	if err != nil {
		return nil, err
	}
	defer Zeroize(master)

	sb, err := e.buildSbox(master, km.Nonce, cfg.SboxSource)
	if err != nil {
		return nil, err
	}

	plan := PlanExecution(cfg.ThreadMode, cfg.Workers, len(payload), e.snap)
	e.logPlan("encrypt", plan, len(payload))
	ct, err := Transform(payload, master, sb, cfg.Rounds, plan, Encrypt)
	if err != nil {
		return nil, err
	}

	// The tag covers the original plaintext, not the filler, so decryption
	// of an empty-input payload verifies against the empty plaintext.
	tag := computeMac(master, plaintext, ct)

	res := &Result{}
	if cfg.WrapAll {
		rec := &wrappedRecord{
			salt:       km.effectiveSalt(),
			nonce:      km.Nonce,
			ciphertext: ct,
			mac:        tag,
		}
		if filler {
			rec.flags |= flagEmptyFiller
		}
		if cfg.DummyData {
			rec.flags |= flagDummyPad
		}
		if cfg.RecoveryKey {
			rk, err := DeriveRecoveryKey(km.Password, km.Nonce, cfg.KeyLength)
			if err != nil {
				return nil, err
			}
			rec.slot = maskRecoverySlot(master, rk, km.Nonce)
			rec.flags |= flagRecoverySlot
			res.RecoveryKey = rk
		}
		out, err := encodeRecord(rec)
		if err != nil {
			zeroizeAll(res.RecoveryKey, rec.slot)
			return nil, err
		}
		res.Output = out
	} else {
		res.Output = append(ct, tag...)
	}

	res.Elapsed = time.Since(start)
	if cfg.Benchmark {
		e.log.WithFields(logrus.Fields{
			"op":         "encrypt",
			"bytes":      len(payload),
			"elapsed":    res.Elapsed,
			"workers":    plan.Workers,
			"vectorized": plan.Vectorized,
		}).Info("operation complete")
	}
	return res, nil
}

// Decrypt reverses Encrypt. For wrapped input the salt and nonce stored in
// the record take precedence over the ones in km; for bare input km must
// carry the same salt and nonce used at encrypt time.
//
// On authentication failure the recovered plaintext is wiped before
// ErrMacMismatch is returned.
func (e *Engine) Decrypt(cfg Config, km KeyMaterial, data []byte) ([]byte, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(km.Password) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "password cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}

	var pt []byte
	var payloadLen int
	if cfg.WrapAll {
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		master, err := e.cache.Derive(km.Password, rec.salt, rec.nonce, cfg.KeyLength)
		if err != nil {
			return nil, err
		}
		defer Zeroize(master)
		payloadLen = len(rec.ciphertext)
		pt, err = e.openRecord(cfg, master, rec)
		if err != nil {
			return nil, err
		}
	} else {
		if err := km.validate(); err != nil {
			return nil, err
		}
		master, err := e.cache.Derive(km.Password, km.effectiveSalt(), km.Nonce, cfg.KeyLength)
		if err != nil {
			return nil, err
		}
		defer Zeroize(master)
		ct, tag, err := splitBare(data)
		if err != nil {
			return nil, err
		}
		payloadLen = len(ct)
		pt, err = e.openBare(cfg, master, km.Nonce, ct, tag)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Benchmark {
		e.log.WithFields(logrus.Fields{
			"op":      "decrypt",
			"bytes":   payloadLen,
			"elapsed": time.Since(start),
		}).Info("operation complete")
	}
	return pt, nil
}

// DecryptWithRecovery decrypts a wrapped record using only the password and
// the recovery slot stored in the record. The salt is not needed: the
// recovery key depends on the nonce alone, and the nonce is in the record.
func (e *Engine) DecryptWithRecovery(cfg Config, password, data []byte) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.WrapAll {
		richErr := goerrors.New(ErrCodeBadConfig, "recovery decryption requires the wrapped output record")
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if !rec.hasSlot() {
		richErr := goerrors.New(ErrCodeBadRecord, "record carries no recovery slot")
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, richErr)
	}
	if len(rec.slot) != cfg.keyBytes() {
		richErr := goerrors.New(ErrCodeBadRecord, fmt.Sprintf("recovery slot is %d bytes, want %d", len(rec.slot), cfg.keyBytes()))
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, richErr)
	}

	rk, err := DeriveRecoveryKey(password, rec.nonce, cfg.KeyLength)
	if err != nil {
		return nil, err
	}
	defer Zeroize(rk)

	master := unmaskRecoverySlot(rec.slot, rk, rec.nonce)
	defer Zeroize(master)
	return e.openRecord(cfg, master, rec)
}

// Close wipes and releases the engine's key cache.
func (e *Engine) Close() {
	e.cache.Close()
}

// openRecord decrypts and authenticates a decoded record with a known master
// key.
func (e *Engine) openRecord(cfg Config, master []byte, rec *wrappedRecord) ([]byte, error) {
	sb, err := e.buildSbox(master, rec.nonce, cfg.SboxSource)
	if err != nil {
		return nil, err
	}
	plan := PlanExecution(cfg.ThreadMode, cfg.Workers, len(rec.ciphertext), e.snap)
	e.logPlan("decrypt", plan, len(rec.ciphertext))
	pt, err := Transform(rec.ciphertext, master, sb, cfg.Rounds, plan, Decrypt)
	if err != nil {
		return nil, err
	}
	if rec.emptyFiller() {
		// Filler records authenticate against the empty plaintext; the
		// recovered filler itself is discarded.
		defer Zeroize(pt)
		if err := verifyMac(master, nil, rec.ciphertext, rec.mac); err != nil {
			return nil, err
		}
		return []byte{}, nil
	}
	if err := verifyMac(master, pt, rec.ciphertext, rec.mac); err != nil {
		Zeroize(pt)
		return nil, err
	}
	return pt, nil
}

// openBare decrypts and authenticates a bare ciphertext+tag payload. Bare
// output has no flag byte, so an empty-input ciphertext is detected by a
// second verification against the empty plaintext.
func (e *Engine) openBare(cfg Config, master, nonce, ct, tag []byte) ([]byte, error) {
	sb, err := e.buildSbox(master, nonce, cfg.SboxSource)
	if err != nil {
		return nil, err
	}
	plan := PlanExecution(cfg.ThreadMode, cfg.Workers, len(ct), e.snap)
	e.logPlan("decrypt", plan, len(ct))
	pt, err := Transform(ct, master, sb, cfg.Rounds, plan, Decrypt)
	if err != nil {
		return nil, err
	}
	if err := verifyMac(master, pt, ct, tag); err == nil {
		return pt, nil
	}
	if err := verifyMac(master, nil, ct, tag); err == nil {
		Zeroize(pt)
		return []byte{}, nil
	}
	Zeroize(pt)
	richErr := goerrors.New(ErrCodeMacMismatch, "authentication tag does not match")
	return nil, fmt.Errorf("%w: %w", ErrMacMismatch, richErr)
}

func (e *Engine) logPlan(op string, plan Plan, n int) {
	e.log.WithFields(logrus.Fields{
		"op":         op,
		"bytes":      n,
		"workers":    plan.Workers,
		"vectorized": plan.Vectorized,
	}).Debug("execution plan")
}

// buildSbox derives the seed for the configured source and generates the
// substitution pair, wiping the seed afterwards.
func (e *Engine) buildSbox(master, nonce []byte, source SboxSource) (*SBoxPair, error) {
	seed := sboxSeed(master, nonce, source)
	defer Zeroize(seed)
	return GenerateSBox(seed)
}

// splitBare separates a bare payload into ciphertext and tag.
func splitBare(data []byte) (ct, tag []byte, err error) {
	if len(data) < macTagLen {
		richErr := goerrors.New(ErrCodeInvalidLength, fmt.Sprintf("bare input must carry a %d-byte tag, got %d bytes", macTagLen, len(data)))
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}
	return data[:len(data)-macTagLen], data[len(data)-macTagLen:], nil
}
