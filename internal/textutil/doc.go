// Package textutil provides small text helpers: number extraction from model
// output, display title-casing, and filename sanitization.
package textutil
