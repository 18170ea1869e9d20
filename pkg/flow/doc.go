// Package flow defines the values exchanged between nodes during a pull.
//
// A Data is a closed tagged union: exactly one Kind is set and only the
// accessor matching that Kind reports ok. Consumers switch on Kind and treat
// anything they do not expect as a type mismatch rather than coercing it.
package flow
