package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cdmoen/Museum"

// Tracer returns the tracer used by shop components. It follows the global
// provider, so spans are no-ops until an exporter is installed.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationName + "/" + component)
}

// Meter returns the meter used by shop components.
func Meter(component string) metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationName + "/" + component)
}
