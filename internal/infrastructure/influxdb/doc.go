// Package influxdb writes run metrics to InfluxDB v2.
//
// Every stopped run produces one trace_runs point tagged with its domain,
// item and outcome, carrying duration_seconds, steps and error fields.
// Writes are batched and non-blocking; failures arrive through SetOnError.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics are optional
//	}
//	client.WriteRun(rec)
package influxdb
