// Package events defines the topics and payloads published by the undo
// engine and the editor workspace.
package events
