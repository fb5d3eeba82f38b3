// Package content loads and validates the content table of the quest:
// the step graph, the trivia rules, and every mini-game's parameters.
//
// Tables are YAML documents. Two are embedded: "map" (the non-linear map
// hub, the default) and "linear" (one fixed sequence). Each step's
// free-form params block is decoded over the game's defaults, so a table
// only needs to list what it changes.
package content
