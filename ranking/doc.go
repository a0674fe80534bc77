// Package ranking implements the peer-review wire format: the strict
// "FINAL RANKING:" block parser (the only output format requiring exact
// textual compatibility) and the Borda-style aggregation of per-member
// rankings into one deterministic consensus ordering.
package ranking
