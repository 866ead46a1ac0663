// Package votingbooth implements the ballot-casting side of agora elections.
//
// The module resolves which session of an election is open for voting,
// checks that the caller is a registered voter, holds the voter's in-progress
// ballot and enforces per-item cardinality, and writes one vote record per
// selected option. A long-lived booth client stays in step with the registry
// by polling for the active session on a fixed interval.
//
// Session lifecycle and voter rosters are owned elsewhere; this module only
// reads them and inserts vote records.
package votingbooth
