// Package model holds the value types shared by every analyzer: the
// conversation context, per-analyzer results, the risk scale and the banding
// function that maps scores onto it.
//
// Everything here is a plain value. Results are created fresh per analysis and
// are not modified after they are returned.
package model
