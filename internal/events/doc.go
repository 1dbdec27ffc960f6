// Package events pushes catalog change notifications to websocket clients.
//
// A Hub fans events out to every connected client. Events come either from
// the upload and delete handlers directly or, when WATCH_ENABLED is set, from
// a Watcher following the media directory with fsnotify, which also sees
// changes made outside the application.
package events
