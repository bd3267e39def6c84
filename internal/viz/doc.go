// Package viz provides the interactive terminal board editor.
//
// The package implements a TUI using the Bubble Tea framework:
//
//   - [App]: board editor driving a [sim.Controller]
//   - [Canvas]: Braille-based canvas packing 2x4 cells per rune for large boards
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Arrows/hjkl - Move the cursor
//	Enter/X     - Toggle the cell under the cursor
//	Space       - Start/Stop playback
//	N           - Step one generation while stopped
//	R           - Reset to the board the last run started from
//	C           - Clear the board
//	+/-         - Faster/slower
//	E/I         - Export/Import the board file
//	P           - Load the next prefab pattern
//	S           - Load a random soup
//	B           - Toggle braille view
//	T           - Cycle color themes
//	?           - Show help overlay
package viz
