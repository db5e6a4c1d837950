package linalg

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonConvergence is returned when the QR phase of the SVD exceeds its iteration budget.
var ErrNonConvergence = errors.New("linalg: svd did not converge")

const (
	// eps is the double precision machine epsilon.
	eps = 0x1p-52
	// tiny is the smallest scale considered when testing negligible entries.
	tiny = 0x1p-966

	// DefaultIterationFactor scales max(m, n) into the QR step budget per deflation.
	DefaultIterationFactor = 75
)

// SVD holds the singular value decomposition A = U·S·Vᵗ of an m×n matrix.
type SVD struct {
	m, n int
	u    [][]float64 // m × min(m, n)
	s    []float64   // min(m+1, n)
	v    [][]float64 // n × n
}

type svdConfig struct {
	maxIterations int
}

// Option configures Decompose.
type Option func(*svdConfig)

// WithMaxIterations caps the number of QR steps spent on one deflation.
// Values <= 0 select DefaultIterationFactor·max(m, n).
func WithMaxIterations(n int) Option {
	return func(c *svdConfig) {
		c.maxIterations = n
	}
}

// Decompose computes the SVD of a using Householder bidiagonalization followed by
// implicit-shift QR iteration. Singular values come back non-negative and sorted in
// descending order, with the columns of U and V permuted to match.
func Decompose(a *Matrix, opts ...Option) (*SVD, error) {
	m, n := a.Dims()
	cfg := svdConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxIterations <= 0 {
		cfg.maxIterations = DefaultIterationFactor * max(m, n)
	}

	if m == 0 || n == 0 {
		return &SVD{m: m, n: n, u: zeros(m, min(m, n)), v: identityRows(n)}, nil
	}

	d := &SVD{m: m, n: n}
	if err := d.decompose(a.Rows(), cfg.maxIterations); err != nil {
		return nil, err
	}
	d.order()
	return d, nil
}

func (d *SVD) decompose(a [][]float64, maxIter int) error {
	m, n := d.m, d.n
	nu := min(m, n)

	s := make([]float64, min(m+1, n))
	u := zeros(m, nu)
	v := zeros(n, n)
	e := make([]float64, n)
	work := make([]float64, m)

	// Reduce a to bidiagonal form, storing the diagonal in s and the
	// superdiagonal in e.
	nct := min(m-1, n)
	nrt := max(0, min(n-2, m))
	for k := 0; k < max(nct, nrt); k++ {
		if k < nct {
			// 2-norm of column k without under/overflow.
			s[k] = 0
			for i := k; i < m; i++ {
				s[k] = math.Hypot(s[k], a[i][k])
			}
			if s[k] != 0 {
				if a[k][k] < 0 {
					s[k] = -s[k]
				}
				for i := k; i < m; i++ {
					a[i][k] /= s[k]
				}
				a[k][k]++
			}
			s[k] = -s[k]
		}

		for j := k + 1; j < n; j++ {
			if k < nct && s[k] != 0 {
				var t float64
				for i := k; i < m; i++ {
					t += a[i][k] * a[i][j]
				}
				t = -t / a[k][k]
				for i := k; i < m; i++ {
					a[i][j] += t * a[i][k]
				}
			}
			// Row k feeds the row transformation below.
			e[j] = a[k][j]
		}

		if k < nct {
			for i := k; i < m; i++ {
				u[i][k] = a[i][k]
			}
		}

		if k < nrt {
			e[k] = 0
			for i := k + 1; i < n; i++ {
				e[k] = math.Hypot(e[k], e[i])
			}
			if e[k] != 0 {
				if e[k+1] < 0 {
					e[k] = -e[k]
				}
				for i := k + 1; i < n; i++ {
					e[i] /= e[k]
				}
				e[k+1]++
			}
			e[k] = -e[k]

			if k+1 < m && e[k] != 0 {
				for i := k + 1; i < m; i++ {
					work[i] = 0
				}
				for j := k + 1; j < n; j++ {
					for i := k + 1; i < m; i++ {
						work[i] += e[j] * a[i][j]
					}
				}
				for j := k + 1; j < n; j++ {
					t := -e[j] / e[k+1]
					for i := k + 1; i < m; i++ {
						a[i][j] += t * work[i]
					}
				}
			}

			for i := k + 1; i < n; i++ {
				v[i][k] = e[i]
			}
		}
	}

	// Final bidiagonal matrix of order p.
	p := min(n, m+1)
	if nct < n {
		s[nct] = a[nct][nct]
	}
	if m < p {
		s[p-1] = 0
	}
	if nrt+1 < p {
		e[nrt] = a[nrt][p-1]
	}
	e[p-1] = 0

	// Generate U.
	for j := nct; j < nu; j++ {
		for i := 0; i < m; i++ {
			u[i][j] = 0
		}
		u[j][j] = 1
	}
	for k := nct - 1; k >= 0; k-- {
		if s[k] != 0 {
			for j := k + 1; j < nu; j++ {
				var t float64
				for i := k; i < m; i++ {
					t += u[i][k] * u[i][j]
				}
				t = -t / u[k][k]
				for i := k; i < m; i++ {
					u[i][j] += t * u[i][k]
				}
			}
			for i := k; i < m; i++ {
				u[i][k] = -u[i][k]
			}
			u[k][k] = 1 + u[k][k]
			for i := 0; i < k-1; i++ {
				u[i][k] = 0
			}
		} else {
			for i := 0; i < m; i++ {
				u[i][k] = 0
			}
			u[k][k] = 1
		}
	}

	// Generate V. Reflections are applied to all n columns so V stays
	// orthogonal when m < n.
	for k := n - 1; k >= 0; k-- {
		if k < nrt && e[k] != 0 {
			for j := k + 1; j < n; j++ {
				var t float64
				for i := k + 1; i < n; i++ {
					t += v[i][k] * v[i][j]
				}
				t = -t / v[k+1][k]
				for i := k + 1; i < n; i++ {
					v[i][j] += t * v[i][k]
				}
			}
		}
		for i := 0; i < n; i++ {
			v[i][k] = 0
		}
		v[k][k] = 1
	}

	// Main iteration loop for the singular values.
	pp := p - 1
	iter := 0
	for p > 0 {
		if iter > maxIter {
			return fmt.Errorf("%w after %d QR steps on a %dx%d matrix", ErrNonConvergence, iter, m, n)
		}

		// Inspect for negligible elements in s and e. On completion kase and k are:
		//   1: s[p-1] and e[k-1] are negligible, k < p (deflate)
		//   2: s[k] is negligible, k < p (split)
		//   3: e[k-1] is negligible, k < p, s[k..p-1] not negligible (QR step)
		//   4: e[p-2] is negligible (convergence)
		var k, kase int
		for k = p - 2; k >= 0; k-- {
			if math.Abs(e[k]) <= tiny+eps*(math.Abs(s[k])+math.Abs(s[k+1])) {
				e[k] = 0
				break
			}
		}
		if k == p-2 {
			kase = 4
		} else {
			var ks int
			for ks = p - 1; ks > k; ks-- {
				var t float64
				if ks != p {
					t += math.Abs(e[ks])
				}
				if ks != k+1 {
					t += math.Abs(e[ks-1])
				}
				if math.Abs(s[ks]) <= tiny+eps*t {
					s[ks] = 0
					break
				}
			}
			switch {
			case ks == k:
				kase = 3
			case ks == p-1:
				kase = 1
			default:
				kase = 2
				k = ks
			}
		}
		k++

		switch kase {
		case 1:
			// Deflate negligible s[p-1].
			f := e[p-2]
			e[p-2] = 0
			for j := p - 2; j >= k; j-- {
				t := math.Hypot(s[j], f)
				cs := s[j] / t
				sn := f / t
				s[j] = t
				if j != k {
					f = -sn * e[j-1]
					e[j-1] = cs * e[j-1]
				}
				rotate(v, j, p-1, cs, sn)
			}

		case 2:
			// Split at negligible s[k-1].
			f := e[k-1]
			e[k-1] = 0
			for j := k; j < p; j++ {
				t := math.Hypot(s[j], f)
				cs := s[j] / t
				sn := f / t
				s[j] = t
				f = -sn * e[j]
				e[j] = cs * e[j]
				rotate(u, j, k-1, cs, sn)
			}

		case 3:
			// One QR step with a Wilkinson-style shift from the trailing 2x2 block.
			scale := max(math.Abs(s[p-1]), math.Abs(s[p-2]), math.Abs(e[p-2]), math.Abs(s[k]), math.Abs(e[k]))
			sp := s[p-1] / scale
			spm1 := s[p-2] / scale
			epm1 := e[p-2] / scale
			sk := s[k] / scale
			ek := e[k] / scale
			b := ((spm1+sp)*(spm1-sp) + epm1*epm1) / 2
			c := (sp * epm1) * (sp * epm1)
			var shift float64
			if b != 0 || c != 0 {
				shift = math.Sqrt(b*b + c)
				if b < 0 {
					shift = -shift
				}
				shift = c / (b + shift)
			}
			f := (sk+sp)*(sk-sp) + shift
			g := sk * ek

			// Chase zeros.
			for j := k; j < p-1; j++ {
				t := math.Hypot(f, g)
				cs := f / t
				sn := g / t
				if j != k {
					e[j-1] = t
				}
				f = cs*s[j] + sn*e[j]
				e[j] = cs*e[j] - sn*s[j]
				g = sn * s[j+1]
				s[j+1] = cs * s[j+1]
				rotate(v, j, j+1, cs, sn)

				t = math.Hypot(f, g)
				cs = f / t
				sn = g / t
				s[j] = t
				f = cs*e[j] + sn*s[j+1]
				s[j+1] = -sn*e[j] + cs*s[j+1]
				g = sn * e[j+1]
				e[j+1] = cs * e[j+1]
				if j < m-1 {
					rotate(u, j, j+1, cs, sn)
				}
			}
			e[p-2] = f
			iter++

		case 4:
			// Make the singular value non-negative.
			if s[k] <= 0 {
				if s[k] < 0 {
					s[k] = -s[k]
				} else {
					s[k] = 0
				}
				for i := 0; i < n; i++ {
					v[i][k] = -v[i][k]
				}
			}
			// Order the singular values.
			for k < pp {
				if s[k] >= s[k+1] {
					break
				}
				s[k], s[k+1] = s[k+1], s[k]
				if k < n-1 {
					swapColumns(v, k, k+1)
				}
				if k < m-1 {
					swapColumns(u, k, k+1)
				}
				k++
			}
			iter = 0
			p--
		}
	}

	d.u, d.s, d.v = u, s, v
	return nil
}

// order enforces the descending singular value invariant over the first
// min(m, n) values, permuting U and V columns in lockstep.
func (d *SVD) order() {
	nu := min(d.m, d.n)
	for i := 1; i < nu; i++ {
		for j := i; j > 0 && d.s[j-1] < d.s[j]; j-- {
			d.s[j-1], d.s[j] = d.s[j], d.s[j-1]
			swapColumns(d.u, j-1, j)
			swapColumns(d.v, j-1, j)
		}
	}
}

// Values returns a copy of the min(m, n) singular values in descending order.
func (d *SVD) Values() []float64 {
	out := make([]float64, min(d.m, d.n))
	copy(out, d.s)
	return out
}

// U returns the m × min(m, n) left singular vectors.
func (d *SVD) U() *Matrix {
	return fromRows(d.u, min(d.m, d.n))
}

// S returns the min(m, n) × n near-diagonal matrix of singular values.
func (d *SVD) S() *Matrix {
	return Diagonal(min(d.m, d.n), d.n, d.s)
}

// V returns the n × n right singular vectors.
func (d *SVD) V() *Matrix {
	return fromRows(d.v, d.n)
}

// VT returns Vᵗ.
func (d *SVD) VT() *Matrix {
	return Transpose(d.V())
}

// Dims returns the shape of the decomposed matrix.
func (d *SVD) Dims() (rows, cols int) {
	return d.m, d.n
}

// Rank returns the numerical rank: the count of singular values above
// max(m, n)·S[0]·eps.
func (d *SVD) Rank() int {
	nu := min(d.m, d.n)
	if nu == 0 {
		return 0
	}
	tol := float64(max(d.m, d.n)) * d.s[0] * eps
	rank := 0
	for i := 0; i < nu; i++ {
		if d.s[i] > tol {
			rank++
		}
	}
	return rank
}

// Reconstruct returns U·S·Vᵗ keeping only the first k singular values.
// k is clamped to [0, min(m, n)].
func (d *SVD) Reconstruct(k int) (*Matrix, error) {
	nu := min(d.m, d.n)
	k = max(0, min(k, nu))
	values := d.Values()
	for i := k; i < nu; i++ {
		values[i] = 0
	}
	us, err := Multiply(d.U(), Diagonal(nu, d.n, values))
	if err != nil {
		return nil, err
	}
	return Multiply(us, d.VT())
}

// rotate applies a Givens rotation to columns j and k of x.
func rotate(x [][]float64, j, k int, cs, sn float64) {
	for i := range x {
		t := cs*x[i][j] + sn*x[i][k]
		x[i][k] = -sn*x[i][j] + cs*x[i][k]
		x[i][j] = t
	}
}

func swapColumns(x [][]float64, j, k int) {
	for i := range x {
		x[i][j], x[i][k] = x[i][k], x[i][j]
	}
}

func fromRows(x [][]float64, cols int) *Matrix {
	out := New(len(x), cols)
	for i, row := range x {
		copy(out.data[i*cols:(i+1)*cols], row)
	}
	return out
}

func zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

func identityRows(n int) [][]float64 {
	out := zeros(n, n)
	for i := range out {
		out[i][i] = 1
	}
	return out
}
