package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	// RequestIDKey ключ для request ID в контексте
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader заголовок и ключ метаданных с request ID
	RequestIDHeader = "x-request-id"
)

// TracingUnaryInterceptor присваивает запросу request ID, возвращает его клиенту и логирует результат
func TracingUnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := requestIDFromMetadata(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx = WithRequestIDContext(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		startTime := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(startTime)),
		}

		switch status.Code(err) {
		case codes.OK:
			logger.Info("Request completed", fields...)
		case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied, codes.Unauthenticated:
			logger.Info("Request rejected", append(fields, zap.Error(err))...)
		default:
			logger.Error("Request failed", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}

// RecoveryUnaryInterceptor превращает панику обработчика в ошибку Internal
func RecoveryUnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				WithRequestID(ctx, logger).Error("Panic in gRPC handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}

// LoggingMiddleware создает middleware для HTTP запросов
func LoggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(WithRequestIDContext(r.Context(), requestID))

		startTime := time.Now()
		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		logger.Debug("HTTP request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Int("status", ww.statusCode),
			zap.Duration("duration", time.Since(startTime)))
	})
}

// responseWriterWrapper запоминает код ответа
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestIDContext кладет request ID в контекст
func WithRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID извлекает request ID из контекста
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID добавляет request ID в логгер
func WithRequestID(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if requestID := GetRequestID(ctx); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
