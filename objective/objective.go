// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package objective implements the scoring functions used to compare a
// simulated series against an observed one (spec §4.8).
package objective

import (
	"math"
	"sort"
)

// Func scores simulated against observed (already aligned, equal length,
// no NaNs); a lower score is always better, matching the minimisation
// convention the optimisation packages share.
type Func func(simulated, observed []float64) float64

// NSE is 1 minus the Nash-Sutcliffe efficiency, so minimising it maximises
// the classical NSE in [-inf, 1].
func NSE(simulated, observed []float64) float64 {
	mean := meanOf(observed)
	var numer, denom float64
	for i := range observed {
		d := observed[i] - simulated[i]
		numer += d * d
		m := observed[i] - mean
		denom += m * m
	}
	if denom == 0 {
		return math.Inf(1)
	}
	return numer / denom
}

// LogNSE is NSE computed on log-transformed series, which weights low flows
// more heavily; values are floored at a small epsilon before taking logs to
// avoid -Inf on zero flow.
func LogNSE(simulated, observed []float64) float64 {
	const eps = 1e-6
	logSim := make([]float64, len(simulated))
	logObs := make([]float64, len(observed))
	for i := range simulated {
		logSim[i] = math.Log(math.Max(simulated[i], eps))
		logObs[i] = math.Log(math.Max(observed[i], eps))
	}
	return NSE(logSim, logObs)
}

// RMSE is the root mean squared error.
func RMSE(simulated, observed []float64) float64 {
	var sumSq float64
	for i := range observed {
		d := observed[i] - simulated[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(observed)))
}

// MAE is the mean absolute error.
func MAE(simulated, observed []float64) float64 {
	var sum float64
	for i := range observed {
		sum += math.Abs(observed[i] - simulated[i])
	}
	return sum / float64(len(observed))
}

// KGE is 1 minus the Kling-Gupta efficiency (2009 formulation), combining
// correlation, variability ratio and bias ratio into one distance from the
// ideal point (1,1,1).
func KGE(simulated, observed []float64) float64 {
	r := pearson(simulated, observed)
	simMean, obsMean := meanOf(simulated), meanOf(observed)
	simStd, obsStd := stddevOf(simulated, simMean), stddevOf(observed, obsMean)

	var alpha, beta float64
	if obsStd == 0 {
		alpha = 0
	} else {
		alpha = simStd / obsStd
	}
	if obsMean == 0 {
		beta = 0
	} else {
		beta = simMean / obsMean
	}

	kge := 1 - math.Sqrt((r-1)*(r-1)+(alpha-1)*(alpha-1)+(beta-1)*(beta-1))
	return 1 - kge
}

// PBIAS is the absolute percent bias between simulated and observed totals;
// always non-negative, so it needs no sign convention flip.
func PBIAS(simulated, observed []float64) float64 {
	var simSum, obsSum float64
	for i := range observed {
		simSum += simulated[i]
		obsSum += observed[i]
	}
	if obsSum == 0 {
		return math.Inf(1)
	}
	return math.Abs(100 * (simSum - obsSum) / obsSum)
}

// SDEB (standard deviation error of the bias) is the root mean squared
// error of the non-exceedance-ranked flow duration curves, comparing
// simulated and observed value distributions independent of timing.
func SDEB(simulated, observed []float64) float64 {
	sim := append([]float64(nil), simulated...)
	obs := append([]float64(nil), observed...)
	sort.Float64s(sim)
	sort.Float64s(obs)
	var sumSq float64
	for i := range sim {
		d := obs[i] - sim[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(sim)))
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

func pearson(a, b []float64) float64 {
	meanA, meanB := meanOf(a), meanOf(b)
	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// ByName resolves an objective function by its configuration name.
func ByName(name string) (Func, bool) {
	switch name {
	case "nse":
		return NSE, true
	case "log_nse":
		return LogNSE, true
	case "rmse":
		return RMSE, true
	case "mae":
		return MAE, true
	case "kge":
		return KGE, true
	case "pbias":
		return PBIAS, true
	case "sdeb":
		return SDEB, true
	default:
		return nil, false
	}
}
