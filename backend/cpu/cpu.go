// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/matbench/internal/backend/cpu"
	"github.com/born-ml/matbench/internal/parallel"
)

// DefaultBlock is the cube edge used when a block of 0 is requested.
const DefaultBlock = internalcpu.DefaultBlock

// Naive is the scalar reference kernel.
type Naive = internalcpu.Naive

// Tiled is the cache-blocked kernel.
type Tiled = internalcpu.Tiled

// Vectorized is the lane-vectorized kernel.
type Vectorized = internalcpu.Vectorized

// Parallel is the row-parallel kernel.
type Parallel = internalcpu.Parallel

// Pool is the persistent worker pool used by Parallel.
type Pool = parallel.Pool

// PoolConfig controls the worker pool.
type PoolConfig = parallel.Config

// NewNaive creates the reference kernel.
func NewNaive() *Naive { return internalcpu.NewNaive() }

// NewTiled creates a cache-blocked kernel. block is clamped to [1, 256].
func NewTiled(block int) *Tiled { return internalcpu.NewTiled(block) }

// NewVectorized creates a lane-vectorized kernel. block is clamped to [1, 256].
func NewVectorized(block int) *Vectorized { return internalcpu.NewVectorized(block) }

// NewPool starts a worker pool. Call Close when done.
//
// Example:
//
//	pool := cpu.NewPool(cpu.DefaultPoolConfig())
//	defer pool.Close()
//	k := cpu.NewParallel(64, pool)
func NewPool(cfg PoolConfig) *Pool { return parallel.NewPool(cfg) }

// DefaultPoolConfig returns one worker per CPU.
func DefaultPoolConfig() PoolConfig { return parallel.DefaultConfig() }

// NewParallel creates a row-parallel kernel on pool.
func NewParallel(block int, pool *Pool) *Parallel { return internalcpu.NewParallel(block, pool) }
