package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name probes use to ask about the weather lookup service.
const ServiceName = "weather.lookup.v1.WeatherLookup"

// HealthServer reports serving status over grpc.health.v1.
type HealthServer struct {
	srv *health.Server
}

// NewHealthServer registers the health and reflection services on server.
// Both the overall ("") and the named service start as SERVING.
func NewHealthServer(server *grpc.Server) *HealthServer {
	h := &HealthServer{srv: health.NewServer()}
	healthpb.RegisterHealthServer(server, h.srv)
	reflection.Register(server)

	h.SetServing(true)
	return h
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.srv.Shutdown()
}
