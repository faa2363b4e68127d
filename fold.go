// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package harvest

import (
	"math"
	"strconv"
)

// Walk calls fn for d and every node below it, parents before children.
func Walk(d *Data, fn func(*Data)) {
	fn(d)
	for _, code := range d.order {
		Walk(d.children[code], fn)
	}
}

// Fold accumulates over d and all its descendants.
func Fold[T any](d *Data, acc T, fn func(acc T, node *Data) T) T {
	Walk(d, func(node *Data) {
		acc = fn(acc, node)
	})
	return acc
}

// TimeCounts returns, for each time period, the number of leaves in the
// subtree which report it.
func TimeCounts(d *Data) map[string]int {
	return Fold(d, make(map[string]int), func(counts map[string]int, node *Data) map[string]int {
		if node.Values != nil {
			for _, t := range node.Values.Times {
				counts[t]++
			}
		}
		return counts
	})
}

// LeafCount returns the number of nodes in the subtree holding values.
func LeafCount(d *Data) int {
	return Fold(d, 0, func(n int, node *Data) int {
		if node.Values != nil {
			n++
		}
		return n
	})
}

type extremes struct {
	min, max float64
}

func (e extremes) merge(o extremes) extremes {
	return extremes{math.Min(e.min, o.min), math.Max(e.max, o.max)}
}

func valueExtremes(v *DataValues) extremes {
	e := extremes{NoMin, NoMax}
	if v == nil {
		return e
	}
	for _, s := range v.Values {
		if s == nil {
			continue
		}
		f, err := strconv.ParseFloat(*s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		e = e.merge(extremes{f, f})
	}
	return e
}

// MinMax returns the extremes of all numeric values in the subtree. Values
// which are absent or do not parse as a finite number are skipped; without
// any numeric value the result is NoMin, NoMax.
func MinMax(d *Data) (min, max float64) {
	e := Fold(d, extremes{NoMin, NoMax}, func(e extremes, node *Data) extremes {
		return e.merge(valueExtremes(node.Values))
	})
	return e.min, e.max
}

// UpdateMinMax stores the extremes of every node's subtree on the node and
// returns those of d.
func UpdateMinMax(d *Data) (min, max float64) {
	e := valueExtremes(d.Values)
	for _, code := range d.order {
		cmin, cmax := UpdateMinMax(d.children[code])
		e = e.merge(extremes{cmin, cmax})
	}
	d.Min, d.Max = e.min, e.max
	return e.min, e.max
}
