package ports

// Metric names shared between emitters and the observability adapter.
const (
	MetricSamplesIngested  = "tda_samples_ingested_total"
	MetricSamplesThrottled = "tda_samples_throttled_total"
	MetricDecodeErrors     = "tda_decode_errors_total"
	MetricRecordsIgnored   = "tda_records_ignored_total"
	MetricCommandsSent     = "tda_commands_sent_total"
	MetricCommandsDropped  = "tda_commands_dropped_total"
	MetricLogLines         = "tda_log_lines_total"

	MetricBufferedSamples  = "tda_buffered_samples"
	MetricLogLength        = "tda_log_length"
	MetricConnectionStatus = "tda_connection_status"

	MetricOpenLatency = "tda_transport_open_seconds"
)
