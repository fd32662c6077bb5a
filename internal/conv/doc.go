// Package conv converts between int and the fixed-width integers of the
// checkpoint frame headers.
//
// Sizes read from a header are untrusted and must be checked before they
// size an allocation. Conversions that are safe by construction, such as
// generator numbers in bitmaps, use plain casts.
package conv
