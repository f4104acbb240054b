package platform

// Package platform contains OS/platform integration and naming glue:
// filesystem helpers, output layout and duplicate detection, YouTube URL
// parsing, release track listing, and OS open/reveal.
