// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package dice rolls a single six-sided die.
package dice

import "math/rand/v2"

// Sides is the number of faces on the die.
const Sides = 6

// Source provides pseudo-random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Roller produces one die value in [1, Sides] per call.
type Roller interface {
	Roll() int
}

type sourceFunc func(n int) int

func (f sourceFunc) IntN(n int) int { return f(n) }

type roller struct {
	src Source
}

// New returns a Roller backed by the runtime-seeded global source.
func New() Roller {
	return NewWithSource(sourceFunc(rand.IntN))
}

// NewWithSource returns a Roller backed by src.
func NewWithSource(src Source) Roller {
	return &roller{src: src}
}

func (r *roller) Roll() int {
	return 1 + r.src.IntN(Sides)
}

// Fixed is a Roller that always lands on the same face.
type Fixed int

// Roll returns the fixed face.
func (f Fixed) Roll() int { return int(f) }
