// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mathfn collects the small numeric helpers shared by the node
// solvers: root selection, bracketing and bisection, in the spirit of
// gosl/num's specialised standalone routines rather than a general-purpose
// numerics package.
package mathfn

import "math"

// QuadraticPlus solves a*x^2 + b*x + c = 0 for the root taken from the "+"
// branch of the quadratic formula, x = (-b + sqrt(b^2-4ac)) / (2a), falling
// back to the linear solution -c/b when a is negligible (the piecewise
// storage/flow relationship degenerates to a straight segment, spec §4.5
// routing node).
func QuadraticPlus(a, b, c float64) float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return 0
		}
		return -c / b
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		disc = 0
	}
	return (-b + math.Sqrt(disc)) / (2 * a)
}

// ExpandBracket grows [lo,hi] geometrically around x0 (by factor, starting
// from an initial half-width) until f(lo) and f(hi) have opposite signs, or
// maxIter expansions are exhausted. Used to find an initial bracket for
// Bisect when the dimension table's extent isn't already known to bound the
// root (spec §4.4 storage solver, two-pass active-set iteration).
func ExpandBracket(f func(float64) float64, x0, initialHalfWidth, factor float64, maxIter int) (lo, hi float64, ok bool) {
	halfWidth := initialHalfWidth
	if halfWidth <= 0 {
		halfWidth = 1
	}
	lo, hi = x0-halfWidth, x0+halfWidth
	flo, fhi := f(lo), f(hi)
	for i := 0; i < maxIter; i++ {
		if (flo < 0) != (fhi < 0) {
			return lo, hi, true
		}
		halfWidth *= factor
		lo, hi = x0-halfWidth, x0+halfWidth
		flo, fhi = f(lo), f(hi)
	}
	return lo, hi, (flo < 0) != (fhi < 0)
}

// Bisect finds a root of f within [lo,hi] (which must bracket a sign change)
// to the given absolute tolerance on x, returning the midpoint after the
// iteration budget is exhausted.
func Bisect(f func(float64) float64, lo, hi, tol float64, maxIter int) float64 {
	flo := f(lo)
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (lo + hi)
		if hi-lo < tol {
			return mid
		}
		fmid := f(mid)
		if fmid == 0 {
			return mid
		}
		if (fmid < 0) == (flo < 0) {
			lo = mid
			flo = fmid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// Lerp linearly interpolates between y0 and y1 at fraction t in [0,1].
func Lerp(y0, y1, t float64) float64 {
	return y0 + t*(y1-y0)
}

// Clamp restricts x to [lo,hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
