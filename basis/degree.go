// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package basis

// Degree specifies the per-axis degree of a tensor-product approximant.
type Degree []int

// Uniform returns a Degree with the same degree on every axis.
func Uniform(dim, deg int) Degree {
	d := make(Degree, dim)
	for i := range d {
		d[i] = deg
	}
	return d
}

// Valid reports whether every axis degree is at least 1.
func (d Degree) Valid() bool {
	if len(d) == 0 {
		return false
	}
	for _, v := range d {
		if v < 1 {
			return false
		}
	}
	return true
}

// Size returns the number of tensor basis functions Π(dᵢ+1).
func (d Degree) Size() int {
	n := 1
	for _, v := range d {
		n *= v + 1
	}
	return n
}

// Max returns the largest axis degree.
func (d Degree) Max() int {
	m := 0
	for _, v := range d {
		m = max(m, v)
	}
	return m
}

// Bump returns a copy with every axis degree raised by one.
func (d Degree) Bump() Degree {
	b := make(Degree, len(d))
	for i, v := range d {
		b[i] = v + 1
	}
	return b
}

// ForEach enumerates the tensor multi-indices in row-major order
// (last axis fastest) together with their flat position.
// The idx slice is reused between calls and must not be retained.
func (d Degree) ForEach(fn func(flat int, idx []int)) {
	idx := make([]int, len(d))
	for flat := 0; ; flat++ {
		fn(flat, idx)
		a := len(d) - 1
		for ; a >= 0; a-- {
			idx[a]++
			if idx[a] <= d[a] {
				break
			}
			idx[a] = 0
		}
		if a < 0 {
			return
		}
	}
}
