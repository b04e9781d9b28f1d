// Package model defines the declarative field schema that drives every form
// in the module. A Schema is an ordered, immutable collection of Field
// definitions: the order is the render order, the validation order, and the
// order in which profile metadata is written. Schemas are built once (from Go
// literals through NewSchema or from YAML/JSON files through LoadSchema) and
// shared read-only across requests.
//
// Password confirmation is expressed on the confirming field through
// ConfirmationOf; Pairs resolves the primary/confirmation couples the
// validation engine checks as a unit.
package model
