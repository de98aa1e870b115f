// Package studentized implements the studentized range distribution used by Tukey's HSD.
//
// The CDF is the double integral
//
//	P(Q <= q) = ∫ f(s) · W(q·s) ds,   W(w) = k ∫ φ(z) [Φ(z) − Φ(z−w)]^(k−1) dz
//
// where W is the CDF of the range of k standard normals and f is the density of
// s = sqrt(χ²_df / df). Both integrals use fixed Gauss–Legendre rules.
package studentized

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	innerPoints  = 64
	innerBound   = 8.0
	outerPanels  = 16
	outerPoints  = 24
	outerSpreadL = 8.0
	outerSpreadU = 10.0

	// above this the chi density is close enough to a point mass at 1
	largeDF = 25000.0

	quantileTol     = 1e-9
	quantileMaxIter = 200
)

var legendre = quad.Legendre{}

// CDF returns P(Q <= q) for the studentized range of k means with df error degrees of freedom.
// It returns NaN for k < 2, df < 1 or NaN q. df may be +Inf.
func CDF(q float64, k int, df float64) float64 {
	if math.IsNaN(q) || math.IsNaN(df) || k < 2 || df < 1 {
		return math.NaN()
	}
	if q <= 0 {
		return 0
	}
	if math.IsInf(q, 1) {
		return 1
	}
	if df > largeDF {
		return clamp01(rangeCDF(q, k))
	}

	sigma := 1 / math.Sqrt(2*df)
	lo := math.Max(0, 1-outerSpreadL*sigma)
	hi := 1 + outerSpreadU*sigma
	logNorm := (df/2)*math.Log(df/2) + math.Ln2 - lgamma(df/2)

	integrand := func(s float64) float64 {
		if s <= 0 {
			return 0
		}
		logF := logNorm + (df-1)*math.Log(s) - df*s*s/2
		return math.Exp(logF) * rangeCDF(q*s, k)
	}

	width := (hi - lo) / outerPanels
	total := 0.0
	for i := 0; i < outerPanels; i++ {
		a := lo + float64(i)*width
		total += quad.Fixed(integrand, a, a+width, outerPoints, legendre, 0)
	}
	return clamp01(total)
}

// Survival returns P(Q > q), the Tukey-adjusted p-value for an observed statistic q
func Survival(q float64, k int, df float64) float64 {
	c := CDF(q, k, df)
	if math.IsNaN(c) {
		return c
	}
	return clamp01(1 - c)
}

// Quantile returns the q with CDF(q, k, df) = p, found by bisection
func Quantile(p float64, k int, df float64) float64 {
	if math.IsNaN(p) || p < 0 || p > 1 || k < 2 || df < 1 {
		return math.NaN()
	}
	if p == 0 {
		return 0
	}
	if p == 1 {
		return math.Inf(1)
	}

	lo, hi := 0.0, 1.0
	for CDF(hi, k, df) < p {
		lo = hi
		hi *= 2
		if hi > 1e6 {
			return math.Inf(1)
		}
	}
	for i := 0; i < quantileMaxIter && hi-lo > quantileTol; i++ {
		mid := (lo + hi) / 2
		if CDF(mid, k, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// rangeCDF is P(range of k iid N(0,1) <= w)
func rangeCDF(w float64, k int) float64 {
	if w <= 0 {
		return 0
	}
	n := distuv.UnitNormal
	pow := float64(k - 1)
	f := func(z float64) float64 {
		d := n.CDF(z) - n.CDF(z-w)
		if d <= 0 {
			return 0
		}
		return n.Prob(z) * math.Pow(d, pow)
	}
	return float64(k) * quad.Fixed(f, -innerBound, innerBound, innerPoints, legendre, 0)
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
