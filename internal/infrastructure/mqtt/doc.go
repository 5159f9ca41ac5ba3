// Package mqtt connects graytrace to the Gray Logic MQTT bus.
//
// graytrace is a listener: it subscribes to trace and state topics and
// only publishes its own retained status (online, graceful offline, and an
// LWT for unexpected disconnects).
//
//	Automation engine ──trace──►┐
//	                            ├── Broker ──► graytrace recorder
//	Protocol bridges ──state──► ┘
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllTraces(), 1, handler)
package mqtt
