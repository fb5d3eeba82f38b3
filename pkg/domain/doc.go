/*
Package domain contains the core domain models of the Hearts Quest flow engine.

It defines the step graph primitives, the session Progress State, the
intents a rendering surface sends, and the view model it gets back. The
package is kept pure and free of I/O, timers and persistence, following the
same Hexagonal Architecture split as the rest of the engine.

# Key Entities

  - Step: one screen of the experience and its outgoing edges.
  - Node: a Step reachable from the map hub, with an unlock order.
  - Progress: the per-session snapshot (current step, unlocks, completions, mini-game states).
  - Intent: a user action forwarded by the rendering surface.
  - View: the derived view model (node statuses, progress bar, current screen).
*/
package domain
