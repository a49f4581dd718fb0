// Package atomcrypte implements a configurable symmetric encryption engine
// built on password-based key derivation and a multi-round byte transform.
//
// The engine combines:
//   - Argon2id key derivation with a SHAKE256 extract stage and a
//     concurrency-safe key cache
//   - Key- and nonce-seeded substitution tables generated per operation
//   - A positional keystream transform with parallel chunk processing and a
//     CPU-aware execution planner
//   - HMAC-SHA3-512 authentication over plaintext and ciphertext with
//     constant-time verification
//   - A self-describing output record carrying salt, nonce, optional
//     recovery slot, and optional decoy padding
//   - Salt-independent recovery keys for unlocking records when the salt is
//     lost
//   - Two-pass secure wiping of every intermediate key buffer
//
// # Quick Start
//
// Encrypt and decrypt with a profile preset:
//
//	engine := atomcrypte.New()
//	defer engine.Close()
//
//	nonce, err := atomcrypte.NewNonce()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := atomcrypte.NewConfig().WithWrapAll(true)
//	km := atomcrypte.KeyMaterial{
//		Password: []byte("correct horse battery staple"),
//		Nonce:    nonce,
//	}
//
//	res, err := engine.Encrypt(cfg, km, []byte("sensitive data"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	plaintext, err := engine.Decrypt(cfg, km, res.Output)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Profiles
//
// FromProfile returns tuned parameter sets: ProfileStandard for general use,
// ProfileSecure for a larger round margin, ProfileMax for the widest key and
// every core. Individual fields can be overridden through the With* setters,
// which mark the configuration as custom.
//
// # Recovery Keys
//
// With WithRecoveryKey(true) the engine derives a second key bound to the
// password and nonce only, and stores a masked copy of the master key in the
// output record. DecryptWithRecovery can then open the record without the
// original salt.
//
// # Security Notes
//
// Nonces must be unique per password. The transform is not a standard
// authenticated cipher construction and does not interoperate with any
// established suite; interoperability and formal security proofs are
// explicitly out of scope.
package atomcrypte
