package httptransport

import "expvar"

var (
	metricRequestErrors     = expvar.NewMap("http_request_errors_total")
	metricAdminUnauthorized = expvar.NewInt("http_admin_unauthorized_total")

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)
