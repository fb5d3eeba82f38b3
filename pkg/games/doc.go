/*
Package games implements the Hearts Quest mini-game mechanics as pure simulations.

Every game is split into two halves: a Params struct, which is static
configuration decoded from the content table, and a state struct, which is
plain data owned by the flow controller while the game's step is active.
State methods take the params explicitly, so a state restored from a
snapshot behaves exactly like the live one.

Nothing in this package schedules timers or reads the clock. The controller
decides when a tick, a reveal or an unlock happens; the games only decide
what it does. Randomness is drawn from a Rand, so every simulation is
deterministic under a seeded source.

# Games

  - Chase: a fleeing heart, in teleport or bounce mode.
  - Press: a button pressed up to a cap that relocates every N presses.
  - Tug: player and opponent meters that always finish tied.
  - Wheel: a uniform prize draw with a forward-only spin rotation.
  - Bond: a clamped stat vector mutated by labeled actions.
  - Runner: a frame-driven side scroller with spawned obstacles.
  - Flags, Sliders, Quiz: the one-shot judgment and rating screens.
*/
package games
