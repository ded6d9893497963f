// Package snapshot reads accessibility-tree text dumps.
//
// A dump is line oriented. Each node line has the shape
//
//	- <kind>[ "<label>"][ [<ref>]]:
//
// and child lines are indented more deeply, for example
//
//	- link "@karpathy" [e14]:
//	  - /url: /karpathy
//	- text: Just shipped a new feature  3  12  847
//
// Classify assigns every line a Kind from its leading marker, and BuildTree
// nests the classified lines by indentation so that callers can query
// structure (a link and its url target) without rescanning raw text.
//
// Multi-page dumps are joined with PageSeparator. The separator is ordinary
// text to the classifier.
package snapshot
