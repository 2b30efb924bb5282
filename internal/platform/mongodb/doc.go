// Package mongodb provides MongoDB implementations of the store interfaces.
// Users and tasks live in the "users" and "tasks" collections; ids are
// ObjectIDs rendered as 24-digit hex strings, and references between the
// collections are stored as those strings.
package mongodb
