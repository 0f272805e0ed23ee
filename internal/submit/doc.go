// Package submit validates user-marked skip segments and sends them
// to the community database. Validation failures are rejected locally
// before any network traffic.
package submit
