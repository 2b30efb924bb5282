// Package query turns the listing parameters clients send in the query
// string (where, sort, select, skip, limit, count) into a typed query that
// every store backend can execute.
//
// Parsing is forgiving: a where, sort, or select value that is not a JSON
// object is replaced by an empty object, and skip/limit fall back to their
// defaults. Compiling the parsed values against a Schema is strict: unknown
// fields, unsupported operators, and values of the wrong kind are reported
// as ErrInvalid.
package query
