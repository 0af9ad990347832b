// Package viewstate holds the presentation-facing controllers of a note
// screen: the Editor, a transient buffer for one note, and the List, a live
// projection of all notes.
//
// Controllers never block the caller on storage. Commands ending in Async run
// on supervised goroutines and report failures to the configured error
// handler; Wait blocks until they have finished.
package viewstate
