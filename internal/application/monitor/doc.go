// Package monitor probes the database service in the background.
//
// The probe result is logged on transitions, exported as the
// downstream_up gauge and forwarded to registered listeners such as the
// gRPC health server. It never changes what /health reports.
package monitor
