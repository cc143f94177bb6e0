// Package metric provides Prometheus metrics for the hostdeck console.
//
// The console is a short-lived process, so metrics are not scraped. They
// are gathered on demand and rendered by `hostdeck-cli system metrics`, or
// logged at debug level on exit.
package metric
