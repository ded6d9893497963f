// Package extractor recovers posts and profile fields from accessibility
// snapshots of a profile timeline.
//
// Posts are located through bare anchors: a "- link [eN]:" line whose next
// line targets "/<handle>/status/<id>#m". Anchors that open a post are
// separated from table-of-contents anchors by the lines that follow them.
// Each content anchor opens a block that is parsed into a models.TweetRecord.
// Snapshots without any bare anchor are scanned linearly instead.
//
// Every function in this package is pure and safe for concurrent use.
package extractor
