package grpc

import (
	"fmt"
	"net"

	"NicoQuitService/pkg/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server представляет собой gRPC сервер
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zap.Logger
	port       int
}

// NewServer создает gRPC сервер с цепочкой перехватчиков: трассировка, метрики,
// проверка токена (если задан секрет) и восстановление после паники
func NewServer(handler QuitServiceServer, logger *zap.Logger, port int, jwtSecret string) *Server {
	interceptors := []grpc.UnaryServerInterceptor{
		server.TracingUnaryInterceptor(logger),
		server.MetricsUnaryInterceptor(),
	}
	if jwtSecret != "" {
		interceptors = append(interceptors, server.AuthUnaryInterceptor([]byte(jwtSecret), "/"+ServiceName+"/", logger))
	}
	interceptors = append(interceptors, server.RecoveryUnaryInterceptor(logger))

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterQuitServiceServer(s, handler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Включаем reflection для удобства отладки через grpcurl
	reflection.Register(s)

	return &Server{
		grpcServer: s,
		health:     healthServer,
		logger:     logger,
		port:       port,
	}
}

// Run слушает настроенный порт и обслуживает запросы до остановки
func (s *Server) Run() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.Error("Failed to listen", zap.Error(err), zap.Int("port", s.port))
		return err
	}
	return s.Serve(lis)
}

// Serve обслуживает запросы на готовом listener'е
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Stop переводит сервис в NOT_SERVING и дожидается завершения активных запросов
func (s *Server) Stop() {
	s.logger.Info("Stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
