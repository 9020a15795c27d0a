// Package settlement records finished match results on the Sui ledger.
//
// The arena core hands a winner to a Service after each match; everything
// here is best-effort from the game's point of view. A failed submission is
// reported to the caller for logging and retry policy, never rolled back
// into match state.
package settlement
