/*
Package errors implements custom error interfaces for the pool engine.

The package is a registry of root errors. Every error returned by an
engine operation wraps exactly one root error, so the caller always
sees a distinguishable error code, never a generic failure. Extensions
declare their own roots (for example the escrow validation taxonomy)
through the Register function, which guarantees code uniqueness.
*/
package errors
