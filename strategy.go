// strategy.go: Worker and vectorization planning for the transform pipeline.
//
// Planning is a pure function over a CPU snapshot, so tests can inject
// synthetic core counts and load values instead of sampling real hardware.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// vectorMinLen is the smallest input for which the wide lane path amortizes
// its setup cost; shorter inputs always take the scalar path.
const vectorMinLen = 4096

// CPUSnapshot captures the execution environment feeding a plan.
type CPUSnapshot struct {
	// Cores is the number of logical CPUs available.
	Cores int

	// Load is the current system load fraction in [0,1]. Callers without a
	// load source leave it zero.
	Load float64

	// HasAVX2 reports 256-bit SIMD capability.
	HasAVX2 bool
}

// DetectCPU samples the local machine. Load is left at zero; callers with a
// load source overwrite it before planning.
func DetectCPU() CPUSnapshot {
	return CPUSnapshot{
		Cores:   runtime.NumCPU(),
		HasAVX2: cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// Plan is the execution decision for one transform call.
type Plan struct {
	// Workers is the chunk-level parallelism degree, at least 1.
	Workers int

	// Vectorized selects the wide lane backend. Both backends produce
	// byte-identical output; only throughput differs.
	Vectorized bool
}

// PlanExecution decides worker count and backend for an input.
//
// Auto scales with cores but leaves one core of headroom and halves the pool
// when load exceeds 75%. Full claims every core. Low caps at a quarter of
// the cores. Custom pins exactly the requested count. The result is stable
// for stable inputs and the function has no side effects.
//
// Vectorized is set only when the CPU reports AVX2 and the input is large
// enough to amortize the wide path; requesting vectorization on unsupported
// hardware silently degrades to the scalar path rather than failing.
func PlanExecution(mode ThreadMode, workers, inputLen int, snap CPUSnapshot) Plan {
	cores := snap.Cores
	if cores < 1 {
		cores = 1
	}

	var n int
	switch mode {
	case ThreadFull:
		n = cores
	case ThreadLow:
		n = cores / 4
	case ThreadCustom:
		n = workers
	default: // ThreadAuto
		n = cores - 1
		if snap.Load > 0.75 {
			n /= 2
		}
	}
	if n < 1 {
		n = 1
	}

	// More workers than chunks is wasted scheduling; inputLen bounds the
	// useful parallelism for small payloads.
	if inputLen > 0 {
		maxUseful := (inputLen + minChunkSize - 1) / minChunkSize
		if n > maxUseful {
			n = maxUseful
		}
	}

	return Plan{
		Workers:    n,
		Vectorized: snap.HasAVX2 && inputLen >= vectorMinLen,
	}
}
