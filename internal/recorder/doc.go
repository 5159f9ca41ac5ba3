// Package recorder turns bus traffic into stored runs and logbook entries.
//
// Two MQTT subscriptions feed it:
//
//	graylogic/trace/{domain}/{item_id}   run record JSON, republished while running
//	graylogic/state/{protocol}/{address} bridge state change
//
// Each stored run is also written as an InfluxDB point once it stops and
// announced to WebSocket clients as a trace.recorded event.
package recorder
