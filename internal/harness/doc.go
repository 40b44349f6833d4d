// Package harness runs end-to-end completion scenarios.
//
// A scenario is a YAML file naming protocols, seed rules, completion
// budgets, the expected completion result and optional normal-form
// queries. The harness builds the protocol graph, parses the seeds,
// runs completion and renders the final rule set with Dump.
//
// Dump output is the engine's only stable external format and must stay
// bit-exact, so scenarios are verified against golden files under
// testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
