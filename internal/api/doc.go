// Package api handles incoming HTTP requests for users and tasks, decoding
// and validating request bodies and translating service results and errors
// into enveloped JSON responses. Business rules, including the cascades
// between users and tasks, live in the service package.
package api
