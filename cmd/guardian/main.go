// Guardian checks AI-generated replies before they reach a child.
//
// It runs the content-safety and bias analyses of the guardian engine from
// the command line, manages pattern packs and the decision audit trail, and
// can run as a long-lived process that hot-reloads packs, prunes the audit
// trail and serves health and metrics endpoints.
//
// Usage:
//
//	# Check one reply for a seven-year-old
//	guardian analyze --age 7 "Let's count the stars together!"
//
//	# Content and bias together, exit status 2 when unsafe
//	guardian analyze --age 7 --bias --fail-on-unsafe "..."
//
//	# Analyze a file of replies, one per line
//	guardian batch --input replies.jsonl --format jsonl
//
//	# Validate configuration
//	guardian config validate --config guardian.yaml
//
//	# Query the audit trail
//	guardian audit query --since 24h --unsafe-only
//
//	# Run with hot reload and an operations endpoint
//	guardian run --config guardian.yaml --listen 127.0.0.1:9090
package main

func main() {
	Execute()
}
