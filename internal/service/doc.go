// Package service contains the application services that sit between the
// HTTP/stream layer and the stores. Services validate inputs by constructing
// domain entities, delegate persistence to the store layer, and log the
// lifecycle events that matter operationally.
package service
