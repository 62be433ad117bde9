/*
Package config loads and validates client configuration.

# Sources

A Config can come from four places, all sharing the same defaults:

	cfg := config.New("https://collect.internal", schema.ServiceSearchGateway)

	cfg, err := config.FromFile("beacon.yaml")
	cfg, err := config.FromYAML(data)
	cfg, err := config.FromEnv()

File keys are flat lowercase snake_case. Durations accept Go duration
strings ("500ms") or bare numbers of seconds, matching how deployments
were already writing them:

	collect_url: https://collect.internal
	service: search-gateway
	timeout: 5
	flush_interval: 250ms

FromEnv reads the same keys upper-cased under a BEACON_ prefix, so
BEACON_FLUSH_INTERVAL=250ms overrides flush_interval.

# Defaults and Validation

Missing tuning keys fall back to DefaultConfig. WithDefaults repairs a
partially filled Config the same way; the client constructor applies it,
so callers only need Validate when they want early feedback on the two
required identity fields, CollectURL and Service.
*/
package config
