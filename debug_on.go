//go:build metricsdebug

package metrics

const debugBuild = true
