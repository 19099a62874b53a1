// Package pipeline builds step graphs and renders them as make files.
//
// A Graph is an append-only, ordered list of steps. Each step names a
// sentinel target, the sentinels it depends on, and the shell command that
// does the real work. The Emitter turns a Graph into a make file where every
// rule runs its command and then touches its sentinel, so make's timestamp
// check decides what still has to run. Nothing here executes commands.
package pipeline
