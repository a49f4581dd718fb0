// config_test.go: Test cases for configuration profiles and validation.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte_test

import (
	"testing"

	"github.com/atomcrypte/atomcrypte"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromProfile_Presets(t *testing.T) {
	std := atomcrypte.FromProfile(atomcrypte.ProfileStandard)
	assert.Equal(t, atomcrypte.KeyLength256, std.KeyLength)
	assert.Equal(t, 4, std.Rounds)
	assert.Equal(t, atomcrypte.ThreadAuto, std.ThreadMode)
	require.NoError(t, std.Validate())

	secure := atomcrypte.FromProfile(atomcrypte.ProfileSecure)
	assert.Equal(t, atomcrypte.KeyLength256, secure.KeyLength)
	assert.Equal(t, 6, secure.Rounds)
	require.NoError(t, secure.Validate())

	max := atomcrypte.FromProfile(atomcrypte.ProfileMax)
	assert.Equal(t, atomcrypte.KeyLength512, max.KeyLength)
	assert.Equal(t, 8, max.Rounds)
	assert.Equal(t, atomcrypte.ThreadFull, max.ThreadMode)
	require.NoError(t, max.Validate())

	assert.Equal(t, std, atomcrypte.NewConfig())
}

func TestConfig_SettersReturnCopies(t *testing.T) {
	base := atomcrypte.NewConfig()
	modified := base.WithRounds(10).WithKeyLength(atomcrypte.KeyLength512)

	assert.Equal(t, 4, base.Rounds, "setter must not mutate the receiver")
	assert.Equal(t, 10, modified.Rounds)
	assert.Equal(t, atomcrypte.KeyLength512, modified.KeyLength)
	assert.Equal(t, atomcrypte.ProfileCustom, modified.Profile, "overriding a preset marks the config custom")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     atomcrypte.Config
		wantErr bool
	}{
		{"standard profile", atomcrypte.NewConfig(), false},
		{"wrapped with recovery", atomcrypte.NewConfig().WithWrapAll(true).WithRecoveryKey(true), false},
		{"wrapped with dummy data", atomcrypte.NewConfig().WithWrapAll(true).WithDummyData(true), false},
		{"custom workers", atomcrypte.NewConfig().WithThreads(atomcrypte.ThreadCustom, 2), false},
		{"many rounds", atomcrypte.NewConfig().WithRounds(64), false},
		{"invalid key length", atomcrypte.NewConfig().WithKeyLength(384), true},
		{"zero rounds", atomcrypte.NewConfig().WithRounds(0), true},
		{"negative rounds", atomcrypte.NewConfig().WithRounds(-1), true},
		{"custom without workers", atomcrypte.NewConfig().WithThreads(atomcrypte.ThreadCustom, 0), true},
		{"recovery without wrap", atomcrypte.NewConfig().WithRecoveryKey(true), true},
		{"dummy data without wrap", atomcrypte.NewConfig().WithDummyData(true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, atomcrypte.ErrUnsupportedConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
