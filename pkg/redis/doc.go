// Package redis provides helpers for connecting the session store to a
// Redis server.
//
// Connect retries the initial connection according to the supplied Config
// and returns a ready go-redis client. Healthcheck produces a probe
// function suitable for liveness/readiness endpoints. Configuration fields
// can be populated from environment variables via github.com/caarlos0/env.
package redis
