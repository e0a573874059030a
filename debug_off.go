//go:build !metricsdebug

package metrics

const debugBuild = false
