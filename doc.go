// Package vx drives a raw-mode terminal without a terminfo database.
// Feature support — RGB color, the Kitty keyboard and graphics protocols,
// SGR-pixel mouse reporting, synchronized output — is discovered at
// runtime by issuing VT queries and interpreting the terminal's
// responses, rather than looked up from a static capability table.
//
// The package exposes:
//
//   - an incremental VT/ANSI byte-stream [Parser] producing a lazy
//     sequence of typed [Event] values;
//   - a double-buffered [Screen] of [Cell] values with hierarchical
//     [Window] clipping and a diff-based renderer;
//   - [QueryTerminal], the capability-probe protocol whose responses
//     flip a [Capabilities] record consulted by the renderer;
//   - [TTY] and [Loop], a raw-mode terminal handle and the threaded
//     event loop that reads it;
//   - a [Registry] for Kitty graphics placements.
//
// The embedded VT emulator widget (a child process hosted over a
// pseudo-terminal) lives in the sibling package vt.
package vx
