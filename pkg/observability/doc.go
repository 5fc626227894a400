/*
Package observability exposes carepath activity as Prometheus metrics.

Metrics plug into the traversal engine through domain.LifecycleHooks, count NEWS2
assessments by risk band and wrap HTTP handlers with request counters.
*/
package observability
