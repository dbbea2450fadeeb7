// Package aggregates owns the write paths whose invariants span more than one
// row: today that is recording lesson progress, which reads the learner's
// progress document, applies an update and writes it back with a version check
// while appending the matching activity event.
package aggregates
