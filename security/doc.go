// Package security holds the TLS settings of the request pipeline transport.
//
//	cfg := security.TLSConfig{CAFile: "/etc/armkit/stack-hub-ca.pem"}
//	tlsCfg, err := cfg.Build() // nil when nothing is configured
package security
