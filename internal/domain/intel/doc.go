// Package intel contains the intelligence-profile read models and the pure
// aggregation logic that turns raw business records into profile sections.
//
// The package is organized leaf-to-root: record read models and repository
// contracts feed the three section aggregators (NA flags, disclosures, notes),
// whose output is graded by the completeness classifier and stamped by the
// section metadata builder. Orchestration lives in application/intel; this
// package performs no I/O.
package intel
