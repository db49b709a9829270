// Package api provides the Trading212 equity REST client.
//
// Base URLs:
//   - Live: https://live.trading212.com
//   - Practice: https://api-practice.trading212.com
//
// Every call names the endpoint budget it draws from; the shared limiter
// enforces the broker's per-route sliding windows before a request (or a
// retry of one) goes on the wire. Failures come back as *APIError with a
// closed ErrorKind so callers can branch on retry/abort/drop without
// touching status codes.
package api
