/*
Package session implements session management and persistence orchestration.

A Manager runs the live flows of this process, serializes access to each
session with reference-counted local locks (plus an optional distributed
lock), and writes every accepted mutation through to a ports.StateStore so
that a session survives a restart and can be listed, inspected or removed.
*/
package session
