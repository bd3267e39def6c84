// Package life provides the finite-grid Game of Life engine.
//
// The package defines the data model and the stepping algorithm:
//
//   - [Cell]: alive flag plus the pending birth/death flags of a generation
//   - [Grid]: fixed-size, row-major, non-wrapping board of cells
//   - [Step]: evaluates every cell against the prior generation, then commits
//   - [Snapshot]: alive/dead-only value copy used for reset, import and export
//
// # Example
//
//	g, _ := life.NewGrid(3, 3)
//	g.Toggle(0, 1)
//	g.Toggle(1, 1)
//	g.Toggle(2, 1)
//	life.Step(g)
//
// # Boundary
//
// Neighbours outside the grid are absent, never wrapped. Edge cells have five
// candidate neighbours and corners three.
//
// # Thread Safety
//
// Grid is NOT thread-safe. The sim package serializes access through its
// Controller.
package life
