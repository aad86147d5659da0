// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package query implements the Discard/Keep/Emit predicate tree the
// stream consumer evaluates over each parsed record or cell aggregate.
//
// Grounded on original_source/bascet-core/src/query/query.rs's QueryApply
// tuple composition (empty tuple always Emit; a single-element tuple
// forwards its one result; an n-element tuple short-circuits on the first
// Discard and otherwise remembers whether any element asked to Emit).
// Rust composes queries as a variadic tuple (bascet_variadic, up to 16
// elements); the idiomatic Go analogue is a plain []Predicate[T] slice,
// which generalises to any length without macro expansion.
package query

// Result is the outcome of applying a predicate to a value.
type Result int

const (
	// Keep means the value passes this predicate but is not, on its
	// own, reason to emit it early — composition continues.
	Keep Result = iota
	// Discard means the value must be dropped. Short-circuits the rest
	// of the predicate tree.
	Discard
	// Emit means the value should be produced to the consumer now.
	Emit
)

// Predicate evaluates one test against a value of type T.
type Predicate[T any] interface {
	Apply(v T) Result
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc[T any] func(v T) Result

func (f PredicateFunc[T]) Apply(v T) Result { return f(v) }

// Apply composes predicates left to right: an empty slice always Emits;
// otherwise the first Discard short-circuits the whole composition, and
// the overall result is Emit if any predicate asked to Emit, else Keep.
func Apply[T any](predicates []Predicate[T], v T) Result {
	if len(predicates) == 0 {
		return Emit
	}
	result := Keep
	for _, p := range predicates {
		switch p.Apply(v) {
		case Discard:
			return Discard
		case Emit:
			result = Emit
		case Keep:
		}
	}
	return result
}
