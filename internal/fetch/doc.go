// Package fetch downloads remote episode audio to local scratch storage.
//
// Podcast CDNs frequently reject bare script clients, so requests carry a
// browser-like User-Agent and a Referer derived from the audio URL's own
// origin. Bodies are streamed to disk in bounded chunks and failed attempts
// are retried with a fixed delay before the job is abandoned.
package fetch
