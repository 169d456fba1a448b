/*
Package observability turns engine lifecycle events into metrics, logs and traces.

Each helper returns a domain.LifecycleHooks value; combine them with
LifecycleHooks.Merge and pass the result to markov.WithLifecycleHooks.
*/
package observability
