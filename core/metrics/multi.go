package metrics

// MultiSink fans solve events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordIntervals forwards interval points when supported by the sink.
func (m *MultiSink) RecordIntervals(runID string, points []IntervalPoint) error {
	for _, s := range m.Sinks {
		if ir, ok := s.(IntervalRecorder); ok {
			if err := ir.RecordIntervals(runID, points); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
