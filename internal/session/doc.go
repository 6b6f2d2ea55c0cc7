// Package session drives one LifeLens analysis session.
//
// Machine owns the current phase, the collected input and the latest
// diagnosis. Every user intent (select an image, dictate, submit, navigate)
// is a method on Machine; service calls run outside the machine lock and
// their responses are discarded when the session generation has moved on.
//
// Sequencer replays the built-in demo scenarios through the same phases
// without touching the network or the record store.
package session
