// Package segments models skippable time intervals within a media
// item's runtime. Provider APIs speak seconds; correlation happens in
// milliseconds. A Set carries the chapter-override flag that makes
// embedded chapter data authoritative over provider data.
package segments
