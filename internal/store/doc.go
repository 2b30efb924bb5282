// Package store defines the persistence interfaces for users and tasks.
// Implementations live under internal/platform and differ in how they
// represent identifiers, so each exposes ValidID for the format it accepts.
// Every cascade between the two collections is a sequence of independent
// calls made by the service layer; no store call spans both collections.
package store
