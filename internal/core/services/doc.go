// Package services holds the bridge's core logic behind the driving ports:
// environment resolution, classification, the per-environment executor and
// the fan-out aggregator, phone lookup, the subscriber push and its daily
// scheduler, and settings.
//
// Services talk to databases, the sink and the history store only through
// driven ports, so every service is tested with in-memory fakes.
package services
