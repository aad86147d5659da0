// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package query

// Assume wraps a predicate function the caller believes can never fail
// for well-formed input. If it does, Apply panics with message rather
// than returning Discard — an assertion violation is a programming error,
// not a value to filter out.
//
// Grounded on original_source/bascet-core/src/query/assume.rs's Assume,
// which panics on a failed predicate for the same reason.
type Assume[T any] struct {
	Predicate func(v T) bool
	Message   string
}

func (a Assume[T]) Apply(v T) Result {
	if a.Predicate(v) {
		return Keep
	}
	panic(a.Message)
}
