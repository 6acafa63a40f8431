/*
Package app assembles the engine: a path router for message handlers
and a dispatcher that executes every invocation inside its own store
cache wrap, writing on success and discarding on any error.
*/
package app
