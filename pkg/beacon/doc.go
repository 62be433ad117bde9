/*
Package beacon emits telemetry events from search pipeline services to a
central collection service.

# Overview

beacon is the client side of the pipeline's event collection: services
describe what happened (a pattern matched, a query ran, a rate limit
tripped) as typed events, and the library validates, batches, retries,
and ships them over HTTP. Delivery problems are absorbed into bool
results and structured logs so telemetry can never break the caller.

The library provides:
  - A closed event taxonomy with per-kind payload validation
  - Immediate sends with bounded exponential-backoff retries
  - A batched queue drained by one background goroutine per client
  - Per-service facades and a generics-based function decorator
  - Pluggable sinks (HTTP, SQLite, in-memory, fan-out)

# Basic Usage

Create a client from a config and send through a facade:

	cfg := config.New("https://collector.internal", schema.ServicePatternMatcher)
	client, err := beacon.New(cfg)
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

	matcher := beacon.NewPatternMatcher(client)
	matcher.PatternFound(ctx, "population of portland", "city_population", 0.93,
	    schema.MatchExact, beacon.WithProcessingTime(12*time.Millisecond))

The bool result reports acceptance; failures are already logged.

# Batched Delivery

Enqueue defers delivery to the background flush loop:

	env, _ := schema.NewSearchRequest(schema.ServiceSearchGateway,
	    schema.SearchRequest{Query: "coffee near me"})
	client.Enqueue(env)

Reaching BatchSize envelopes triggers an immediate flush; otherwise the
queue drains every FlushInterval. Close stops the loop, drains whatever
is left in one best-effort pass, and closes the sink.

# Default Client

A process-wide default mirrors slog's pattern:

	beacon.SetDefault(client)
	beacon.Send(ctx, env)

The track subpackage uses the default when no explicit client is given.

# Custom Sinks

Delivery targets are pluggable:

	sink, err := transport.NewSQLiteSink("./events.db")
	client, err := beacon.New(cfg, beacon.WithSink(sink))

transport.MultiSink mirrors traffic to several sinks at once, for example
HTTP plus a local SQLite capture.

# Observability

The client logs through slog and can record OpenTelemetry or Prometheus
metrics and OpenTelemetry spans:

	client, err := beacon.New(cfg,
	    beacon.WithLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil))),
	    beacon.WithMetrics(observability.NewMetricsRecorder()),
	    beacon.WithSpans(observability.NewSpanManager()))

Metrics: beacon.deliveries, beacon.delivery.latency_ms, beacon.queue.depth,
beacon.flushes, etc. Spans: beacon.send and beacon.flush.

# Thread Safety

  - Client IS safe for concurrent use (Enqueue, SendNow, Close)
  - Facades are stateless handles and safe for concurrent use
  - Sink implementations are safe for concurrent use

# Subpackages

  - schema: event kinds, payloads, envelope construction
  - config: client configuration (defaults, YAML/JSON files, environment)
  - transport: sinks (HTTP, memory, SQLite, fan-out)
  - errors: failure taxonomy and retry machinery
  - observability: logging, metrics, and tracing helpers
  - track: function decorator that auto-emits outcome events
*/
package beacon
