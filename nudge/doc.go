// Package nudge decides whether a tracked networking thread should surface a
// single optional follow-up suggestion on a given day, and learns from the
// user's reactions to those suggestions.
//
// Everything here is synchronous and free of I/O. The current day is always
// supplied by the caller, and LearningState is passed in and returned as a
// value so any decision can be reproduced from a state snapshot.
package nudge
