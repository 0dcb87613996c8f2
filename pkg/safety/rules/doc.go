// Package rules holds the phrase tables every analyzer scores against.
//
// A Store maps a category (toxicity, privacy, gender, ...) to subcategories of
// literal phrases. Matching is case-insensitive substring containment on text
// passed through Normalize; each phrase present contributes one match, and a
// category score is min(1, matches*increment).
//
// Stores are immutable. Merge and the pack loaders return new stores, so a
// pipeline built over one store is never affected by a later reload.
//
// # Pattern packs
//
// Operators extend the built-in tables with YAML packs:
//
//	version: "1"
//	categories:
//	  toxicity:
//	    patterns:
//	      insults: ["meanie", "dummy"]
//	  gender:
//	    patterns:
//	      gender_stereotypes: ["pink is for girls"]
//
// Load merges a single pack or a directory of packs over a base store, and
// Watcher reports changes so the caller can rebuild its pipeline.
package rules
