// SPDX-License-Identifier: GPL-2.0-only

/*
Package arpatch builds and applies binary index files that describe how
to reconstruct a new file N from an old file O plus a sequence of
literal and reference chunks.

Generation escapes a chosen byte value out of O's alphabet, builds a
best-match index over O, then walks N looking for the longest run at
each position that already occurs in O. Runs below a configurable
floor are folded into literal chunks instead of being referenced, with
an adaptive skip heuristic controlling how fast the engine gives up
looking for matches inside already-novel stretches of N.

# Generate

	report, err := arpatch.Generate(oldPath, newPath, indexPath, arpatch.DefaultGenerateOptions(), nil)

Generation always verifies its own output before committing the index
file to indexPath; on verification failure no file is left behind.

# Apply

	err := arpatch.Apply(indexPath, arpatch.DefaultApplyOptions(), nil)

Apply resolves the old- and new-file paths recorded in the index file
relative to the index file's own parent directory.
*/
package arpatch
