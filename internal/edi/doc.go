// Package edi implements the deterministic transaction-assembly and
// segment-encoding engine: element formatting, schema-driven segment
// encoding, per-document-type composition, and record validation.
package edi
