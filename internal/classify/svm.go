package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel selects the SVM kernel function.
type Kernel string

const (
	KernelLinear  Kernel = "linear"
	KernelRBF     Kernel = "rbf"
	KernelPoly    Kernel = "poly"
	KernelSigmoid Kernel = "sigmoid"
)

// ParseKernel validates a configured kernel name.
func ParseKernel(s string) (Kernel, error) {
	switch Kernel(s) {
	case KernelLinear, KernelRBF, KernelPoly, KernelSigmoid:
		return Kernel(s), nil
	case "":
		return KernelRBF, nil
	}
	return "", fmt.Errorf("unknown kernel %q", s)
}

const (
	polyDegree = 3
	kernelCoef = 0.0 // additive coefficient for poly and sigmoid
)

func kernelFunc(k Kernel, gamma float64) func(x, y []float64) float64 {
	switch k {
	case KernelLinear:
		return floats.Dot
	case KernelPoly:
		return func(x, y []float64) float64 {
			return math.Pow(gamma*floats.Dot(x, y)+kernelCoef, polyDegree)
		}
	case KernelSigmoid:
		return func(x, y []float64) float64 {
			return math.Tanh(gamma*floats.Dot(x, y) + kernelCoef)
		}
	default: // rbf
		return func(x, y []float64) float64 {
			var d2 float64
			for i := range x {
				d := x[i] - y[i]
				d2 += d * d
			}
			return math.Exp(-gamma * d2)
		}
	}
}

// binarySVM is one one-vs-rest margin machine plus its Platt calibration.
// Alphas are the per-sample Lagrange multipliers over the shared training
// set; samples with zero alpha contribute nothing to the decision value.
type binarySVM struct {
	Alphas []float64
	Labels []float64 // +1 / -1 per training sample
	B      float64

	// Platt sigmoid: P(positive | f) = 1 / (1 + exp(A*f + C))
	PlattA float64
	PlattC float64
}

const (
	smoTolerance = 1e-3
	smoMaxSweeps = 200
	alphaEps     = 1e-9
)

// trainBinary runs a deterministic SMO over the precomputed kernel matrix.
// The second working-set index follows the max-|E1-E2| heuristic so training
// needs no randomness and repeated runs produce identical models.
func trainBinary(gram [][]float64, y []float64, c float64) binarySVM {
	n := len(y)
	alphas := make([]float64, n)
	b := 0.0

	f := func(i int) float64 {
		s := b
		for j := 0; j < n; j++ {
			if alphas[j] > alphaEps {
				s += alphas[j] * y[j] * gram[i][j]
			}
		}
		return s
	}

	for sweep := 0; sweep < smoMaxSweeps; sweep++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := f(i) - y[i]
			if !((y[i]*ei < -smoTolerance && alphas[i] < c) || (y[i]*ei > smoTolerance && alphas[i] > 0)) {
				continue
			}

			// pick the partner maximizing |ei - ej|
			j, best := -1, -1.0
			for jj := 0; jj < n; jj++ {
				if jj == i {
					continue
				}
				if gap := math.Abs(ei - (f(jj) - y[jj])); gap > best {
					best, j = gap, jj
				}
			}
			if j < 0 {
				continue
			}
			ej := f(j) - y[j]

			ai, aj := alphas[i], alphas[j]
			var lo, hi float64
			if y[i] != y[j] {
				lo = math.Max(0, aj-ai)
				hi = math.Min(c, c+aj-ai)
			} else {
				lo = math.Max(0, ai+aj-c)
				hi = math.Min(c, ai+aj)
			}
			if hi-lo < alphaEps {
				continue
			}

			eta := 2*gram[i][j] - gram[i][i] - gram[j][j]
			if eta >= 0 {
				continue
			}

			ajNew := aj - y[j]*(ei-ej)/eta
			ajNew = math.Min(hi, math.Max(lo, ajNew))
			if math.Abs(ajNew-aj) < alphaEps {
				continue
			}
			aiNew := ai + y[i]*y[j]*(aj-ajNew)

			b1 := b - ei - y[i]*(aiNew-ai)*gram[i][i] - y[j]*(ajNew-aj)*gram[i][j]
			b2 := b - ej - y[i]*(aiNew-ai)*gram[i][j] - y[j]*(ajNew-aj)*gram[j][j]
			switch {
			case aiNew > alphaEps && aiNew < c-alphaEps:
				b = b1
			case ajNew > alphaEps && ajNew < c-alphaEps:
				b = b2
			default:
				b = (b1 + b2) / 2
			}

			alphas[i], alphas[j] = aiNew, ajNew
			changed++
		}
		if changed == 0 {
			break
		}
	}

	return binarySVM{Alphas: alphas, Labels: y, B: b}
}

// decision computes f(x) = sum_i alpha_i y_i K(x_i, x) + b given the kernel
// row of x against all training samples.
func (m *binarySVM) decision(kRow []float64) float64 {
	s := m.B
	for i, a := range m.Alphas {
		if a > alphaEps {
			s += a * m.Labels[i] * kRow[i]
		}
	}
	return s
}

// fitPlatt calibrates the margin scores into probabilities using Platt
// scaling (Newton iterations as in Lin, Weng & Keerthi 2007). Without this
// step the machine yields only hard labels.
func (m *binarySVM) fitPlatt(scores []float64) {
	n := len(scores)
	var nPos, nNeg float64
	for i := range scores {
		if m.Labels[i] > 0 {
			nPos++
		} else {
			nNeg++
		}
	}

	hiTarget := (nPos + 1) / (nPos + 2)
	loTarget := 1 / (nNeg + 2)
	targets := make([]float64, n)
	for i := range scores {
		if m.Labels[i] > 0 {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	a := 0.0
	c := math.Log((nNeg + 1) / (nPos + 1))

	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)

	fval := 0.0
	for i := 0; i < n; i++ {
		fApB := scores[i]*a + c
		if fApB >= 0 {
			fval += targets[i]*fApB + math.Log1p(math.Exp(-fApB))
		} else {
			fval += (targets[i]-1)*fApB + math.Log1p(math.Exp(fApB))
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		h11, h22, h21, g1, g2 := sigma, sigma, 0.0, 0.0, 0.0
		for i := 0; i < n; i++ {
			fApB := scores[i]*a + c
			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}
			d2 := p * q
			h11 += scores[i] * scores[i] * d2
			h22 += d2
			h21 += scores[i] * d2
			d1 := targets[i] - p
			g1 += scores[i] * d1
			g2 += d1
		}
		if math.Abs(g1) < eps && math.Abs(g2) < eps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dC := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dC

		step := 1.0
		for step >= minStep {
			newA, newC := a+step*dA, c+step*dC
			newF := 0.0
			for i := 0; i < n; i++ {
				fApB := scores[i]*newA + newC
				if fApB >= 0 {
					newF += targets[i]*fApB + math.Log1p(math.Exp(-fApB))
				} else {
					newF += (targets[i]-1)*fApB + math.Log1p(math.Exp(fApB))
				}
			}
			if newF < fval+1e-4*step*gd {
				a, c, fval = newA, newC, newF
				break
			}
			step /= 2
		}
		if step < minStep {
			break
		}
	}

	m.PlattA = a
	m.PlattC = c
}

// calibrated maps a decision value through the fitted Platt sigmoid.
func (m *binarySVM) calibrated(score float64) float64 {
	fApB := score*m.PlattA + m.PlattC
	if fApB >= 0 {
		return math.Exp(-fApB) / (1 + math.Exp(-fApB))
	}
	return 1 / (1 + math.Exp(fApB))
}
