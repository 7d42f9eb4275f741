// Package viz provides the terminal view of a running cloth.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one cloth with keyboard interaction
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Camera]: orbiting perspective camera with spring-eased motion
//   - [Recorder]: GIF capture of the canvas
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	1 2 3  - Toggle structural, shear and bend constraints
//	W      - Toggle oscillating wind
//	M      - Switch between force and hit interaction
//	D      - Drop the cloth (unpin all)
//	R      - Reset to the rest layout
//	Arrows - Move the particle cursor
//	Enter  - Poke the particle under the cursor
//	F      - Radius push around the cursor
//	?      - Show help overlay
package viz
