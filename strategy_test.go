// strategy_test.go: Test cases for execution planning.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte_test

import (
	"testing"

	"github.com/atomcrypte/atomcrypte"
)

func TestPlanExecution_Modes(t *testing.T) {
	snap := atomcrypte.CPUSnapshot{Cores: 8}
	input := 1 << 20

	cases := []struct {
		name    string
		mode    atomcrypte.ThreadMode
		workers int
		want    int
	}{
		{"full claims every core", atomcrypte.ThreadFull, 0, 8},
		{"low caps at a quarter", atomcrypte.ThreadLow, 0, 2},
		{"custom pins the count", atomcrypte.ThreadCustom, 3, 3},
		{"auto leaves headroom", atomcrypte.ThreadAuto, 0, 7},
	}
	for _, tc := range cases {
		plan := atomcrypte.PlanExecution(tc.mode, tc.workers, input, snap)
		if plan.Workers != tc.want {
			t.Errorf("%s: expected %d workers, got %d", tc.name, tc.want, plan.Workers)
		}
	}
}

func TestPlanExecution_LoadBackoff(t *testing.T) {
	input := 1 << 20
	idle := atomcrypte.PlanExecution(atomcrypte.ThreadAuto, 0, input, atomcrypte.CPUSnapshot{Cores: 8, Load: 0.5})
	busy := atomcrypte.PlanExecution(atomcrypte.ThreadAuto, 0, input, atomcrypte.CPUSnapshot{Cores: 8, Load: 0.9})
	if idle.Workers != 7 {
		t.Errorf("Expected 7 workers under moderate load, got %d", idle.Workers)
	}
	if busy.Workers != 3 {
		t.Errorf("Expected halved pool under high load, got %d", busy.Workers)
	}
}

func TestPlanExecution_AtLeastOneWorker(t *testing.T) {
	for _, snap := range []atomcrypte.CPUSnapshot{
		{Cores: 0},
		{Cores: 1},
		{Cores: 1, Load: 0.99},
		{Cores: 2},
	} {
		for _, mode := range []atomcrypte.ThreadMode{atomcrypte.ThreadAuto, atomcrypte.ThreadFull, atomcrypte.ThreadLow} {
			plan := atomcrypte.PlanExecution(mode, 0, 64, snap)
			if plan.Workers < 1 {
				t.Errorf("mode %d cores %d: expected at least 1 worker, got %d", mode, snap.Cores, plan.Workers)
			}
		}
	}
}

func TestPlanExecution_SmallInputCapsWorkers(t *testing.T) {
	snap := atomcrypte.CPUSnapshot{Cores: 32}
	plan := atomcrypte.PlanExecution(atomcrypte.ThreadFull, 0, 2048, snap)
	if plan.Workers > 2 {
		t.Errorf("Expected workers capped by input size, got %d", plan.Workers)
	}
}

func TestPlanExecution_Vectorization(t *testing.T) {
	avx := atomcrypte.CPUSnapshot{Cores: 4, HasAVX2: true}
	plain := atomcrypte.CPUSnapshot{Cores: 4}

	if plan := atomcrypte.PlanExecution(atomcrypte.ThreadAuto, 0, 1<<20, avx); !plan.Vectorized {
		t.Error("Expected vectorized plan for large input on AVX2")
	}
	if plan := atomcrypte.PlanExecution(atomcrypte.ThreadAuto, 0, 512, avx); plan.Vectorized {
		t.Error("Expected scalar plan for small input")
	}
	if plan := atomcrypte.PlanExecution(atomcrypte.ThreadAuto, 0, 1<<20, plain); plan.Vectorized {
		t.Error("Expected scalar plan without AVX2")
	}
}

func TestDetectCPU(t *testing.T) {
	snap := atomcrypte.DetectCPU()
	if snap.Cores < 1 {
		t.Errorf("Expected at least 1 core, got %d", snap.Cores)
	}
	if snap.Load != 0 {
		t.Errorf("Expected zero load from detection, got %f", snap.Load)
	}
}
