// Package bias detects stereotyping and assumption bias in replies to children.
//
// A Detector combines three signals:
//
//   - category scores from a Scorer (gender, cultural, socioeconomic, ability,
//     age, educational)
//   - contextual bias that depends on the child profile, such as complex
//     vocabulary for a young child or gendered assumptions when the child's
//     gender is known
//   - structural sentence patterns (comparative or absolutist phrasing)
//
// The overall score is the highest of the category and contextual scores. A
// reply is biased when that score exceeds the threshold or when more patterns
// were detected than the pattern-count threshold allows, so many weak signals
// still flag a reply.
//
// Two scorers exist. PatternScorer matches phrase tables and is deterministic.
// EmbeddingScorer compares sentence embeddings with the same phrases used as
// exemplars. The scorer is chosen once at startup and callers see the same
// result shape from both.
package bias
