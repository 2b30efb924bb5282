// Package domain contains the core business entities of the task board:
// users, the tasks assigned to them, and the parsing rules for the loosely
// typed values clients send for those entities. It is independent of any
// storage backend or delivery mechanism.
package domain
