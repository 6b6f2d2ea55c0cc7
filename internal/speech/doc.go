// Package speech wraps the platform text-to-speech and speech-to-text
// commands.
//
// A Speaker voices one utterance at a time: starting a new utterance stops
// the previous one. CommandSpeaker runs the configured TTS binary in its own
// process group so that Cancel also stops any helpers it spawns. A Listener
// returns one final transcript per call. Nop satisfies both interfaces and is
// used when speech is disabled or the commands are not installed.
package speech
