// Package assets holds the file transformers a build run is made of.
//
// Every transformer works on an afero.Fs with paths relative to the project
// root (or absolute), reads from the configured source tree and writes below
// the output root. Transformers finish all of their writes before returning
// so the next task always sees a settled tree.
package assets
