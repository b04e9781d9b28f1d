// Package validation checks submitted forms against a model.Schema. The Engine
// is pure: it reads a Submission, returns an ordered Errors collection, and
// never performs I/O. Identity checks that need the host (is this email
// taken, does this reset key still work) live with the request handlers and
// append to the same collection.
//
// Error keys follow the wire contract consumed by the browser controller:
// "<field id>_error" for field errors and "<stem>s_error" for a password pair.
package validation
