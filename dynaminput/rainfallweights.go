// Copyright 2024 The Kalix Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynaminput

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cpmech/kalix/kerrors"
)

// Logit is the logit (log-odds) function used to turn a normalised
// distribution parameter u in (0,1) into an unbounded softmax logit.
func Logit(u float64) float64 {
	return math.Log(u / (1 - u))
}

// ValidateDistributionParam checks u lies in [0,1]; rainfall distribution
// parameters (rf_d0..rf_d{n-2}) are gene-mapped normalised values just like
// optimisation genes.
func ValidateDistributionParam(u float64) error {
	if u < 0 || u > 1 {
		return kerrors.New(kerrors.InvalidParams, "distribution parameter %v out of range [0,1]", u)
	}
	return nil
}

// ComputeSymmetricWeights derives n weights (n = len(coefficients)) from a
// bias and n-1 distribution parameters via a softmax of logit(u_i) plus a
// reference zero for station 0 (spec §3 Dynamic Input / LinearCombination):
//
//	z[0] = 0
//	z[i] = logit(u_params[i-1])   for i = 1..n-1
//	weight[i] = bias * softmax(z)[i]
//
// When all u_params = 0.5, softmax(z) is uniform and weight[i] = bias/n.
func ComputeSymmetricWeights(uParams []float64, coefficients []float64, bias float64) []float64 {
	n := len(coefficients)
	z := make([]float64, n)
	for i := 1; i < n; i++ {
		z[i] = Logit(uParams[i-1])
	}
	maxZ := z[0]
	for _, v := range z {
		if v > maxZ {
			maxZ = v
		}
	}
	var sumExp float64
	exps := make([]float64, n)
	for i, v := range z {
		exps[i] = math.Exp(v - maxZ)
		sumExp += exps[i]
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = bias * exps[i] / sumExp
	}
	return weights
}

// IsRainfallParam reports whether name is one of the rainfall-weight
// parameters exposed by a LinearCombination Dynamic Input: "rf_bias" or
// "rf_d<k>".
func IsRainfallParam(name string) bool {
	if name == "rf_bias" {
		return true
	}
	if !strings.HasPrefix(name, "rf_d") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(name, "rf_d"))
	return err == nil
}

// ListRainfallParams returns the names of rainfall-weight parameters exposed
// by in: empty unless in is a LinearCombination, just rf_bias for a
// one-term combination, and rf_bias plus rf_d0..rf_d{n-2} for n terms.
func ListRainfallParams(in Input) []string {
	if in.Kind != KindLinearCombination || len(in.Coefficients) < 2 {
		if in.Kind == KindLinearCombination {
			return []string{"rf_bias"}
		}
		return nil
	}
	names := []string{"rf_bias"}
	for i := 0; i < len(in.Coefficients)-1; i++ {
		names = append(names, fmt.Sprintf("rf_d%d", i))
	}
	return names
}

// SetRainfallParam sets a rainfall-weight parameter by name and recomputes
// Coefficients from (Bias, UParams) via ComputeSymmetricWeights.
func SetRainfallParam(in *Input, name string, value float64) error {
	if in.Kind != KindLinearCombination {
		return kerrors.New(kerrors.InvalidParams, "rainfall weight parameter %q set on a non-LinearCombination input", name)
	}
	switch {
	case name == "rf_bias":
		in.Bias = value
	case strings.HasPrefix(name, "rf_d"):
		k, err := strconv.Atoi(strings.TrimPrefix(name, "rf_d"))
		if err != nil || k < 0 || k >= len(in.UParams) {
			return kerrors.New(kerrors.InvalidParams, "unknown rainfall distribution parameter %q", name)
		}
		if err := ValidateDistributionParam(value); err != nil {
			return err
		}
		in.UParams[k] = value
	default:
		return kerrors.New(kerrors.InvalidParams, "unknown rainfall weight parameter %q", name)
	}
	in.Coefficients = ComputeSymmetricWeights(in.UParams, in.Coefficients, in.Bias)
	return nil
}

// GetRainfallParam returns the current value of a rainfall-weight parameter.
func GetRainfallParam(in Input, name string) (float64, error) {
	if in.Kind != KindLinearCombination {
		return 0, kerrors.New(kerrors.InvalidParams, "rainfall weight parameter %q read on a non-LinearCombination input", name)
	}
	switch {
	case name == "rf_bias":
		return in.Bias, nil
	case strings.HasPrefix(name, "rf_d"):
		k, err := strconv.Atoi(strings.TrimPrefix(name, "rf_d"))
		if err != nil || k < 0 || k >= len(in.UParams) {
			return 0, kerrors.New(kerrors.InvalidParams, "unknown rainfall distribution parameter %q", name)
		}
		return in.UParams[k], nil
	default:
		return 0, kerrors.New(kerrors.InvalidParams, "unknown rainfall weight parameter %q", name)
	}
}

// NewLinearCombination builds a LinearCombination Dynamic Input from n
// rainfall gauge series indices with equal initial weighting (bias=1,
// u_params=0.5), matching the default produced when parsing "a + b + ...".
func NewLinearCombination(seriesIndices []int) Input {
	n := len(seriesIndices)
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0 / float64(n)
	}
	uParams := make([]float64, 0)
	if n > 1 {
		uParams = make([]float64, n-1)
		for i := range uParams {
			uParams[i] = 0.5
		}
	}
	in := Input{
		Kind:          KindLinearCombination,
		SeriesIndices: seriesIndices,
		Coefficients:  coeffs,
		UParams:       uParams,
		Bias:          1.0,
	}
	in.Coefficients = ComputeSymmetricWeights(in.UParams, in.Coefficients, in.Bias)
	return in
}
