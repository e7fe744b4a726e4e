// Package grpc exposes the shortener over gRPC. The message and service
// definitions live in the proto subpackage and mirror the HTTP API.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/grpc/proto"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/storage"
)

// Server wraps the gRPC server and its dependencies.
type Server struct {
	grpcServer *grpc.Server
	port       int
	logger     *zap.Logger
}

// New creates a gRPC server with logging and auth interceptors installed.
func New(baseURL string, logger *zap.Logger, urls *service.URLService, clicks *service.ClickService, auth *service.Auth, port int) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(InterceptorLogger(logger)),
			AuthInterceptor(auth, logger),
		),
	)

	proto.RegisterShortLinkServiceServer(s, &shortenerServer{
		urls:    urls,
		clicks:  clicks,
		auth:    auth,
		baseURL: strings.TrimRight(baseURL, "/"),
	})

	return &Server{
		grpcServer: s,
		port:       port,
		logger:     logger,
	}
}

// Start runs the gRPC server until it is stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.Error("gRPC server failed to listen", zap.Error(err))
		return err
	}

	s.logger.Info("gRPC server listening", zap.Int("port", s.port))
	return s.grpcServer.Serve(lis)
}

// GracefulStop drains in-flight calls and shuts the server down.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

type shortenerServer struct {
	proto.UnimplementedShortLinkServiceServer
	urls    *service.URLService
	clicks  *service.ClickService
	auth    *service.Auth
	baseURL string
}

func userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", status.Error(codes.Internal, "user ID missing in context")
	}
	return userID, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidAlias):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrAliasTaken), errors.Is(err, service.ErrUserExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func (s *shortenerServer) Register(ctx context.Context, req *proto.RegisterRequest) (*proto.AuthResponse, error) {
	user, token, err := s.auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, mapError(err)
	}

	return &proto.AuthResponse{
		UserId:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, nil
}

func (s *shortenerServer) Login(ctx context.Context, req *proto.LoginRequest) (*proto.AuthResponse, error) {
	user, token, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, mapError(err)
	}

	return &proto.AuthResponse{
		UserId:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, nil
}

func (s *shortenerServer) CreateURL(ctx context.Context, req *proto.CreateURLRequest) (*proto.CreateURLResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "expires_at must be RFC 3339")
		}
		expiresAt = &t
	}

	record, err := s.urls.CreateURLRecord(ctx, req.OriginalUrl, userID, req.CustomAlias, expiresAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &proto.CreateURLResponse{
		UrlId:       record.ID,
		ShortUrl:    s.baseURL + "/" + record.ShortCode,
		ShortCode:   record.ShortCode,
		CustomAlias: record.CustomAlias,
	}, nil
}

func (s *shortenerServer) ResolveURL(ctx context.Context, req *proto.ResolveURLRequest) (*proto.ResolveURLResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}

	record, err := s.urls.GetURLByCode(ctx, req.ShortCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &proto.ResolveURLResponse{Found: false}, nil
		}
		return nil, mapError(err)
	}

	expired := record.ExpiresAt != nil && !record.ExpiresAt.After(time.Now())
	resp := &proto.ResolveURLResponse{
		Found:     true,
		IsActive:  record.IsActive,
		IsExpired: expired,
	}
	if record.IsActive && !expired {
		resp.OriginalUrl = record.OriginalURL
	}
	return resp, nil
}

func (s *shortenerServer) ListURLs(ctx context.Context, req *proto.ListURLsRequest) (*proto.ListURLsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	page := int(req.Page)
	pageSize := int(req.PageSize)

	records, total, err := s.urls.GetUserURLs(ctx, userID, page, pageSize, req.Search)
	if err != nil {
		return nil, mapError(err)
	}

	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	} else if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}

	urls := make([]*proto.URLRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		urls = append(urls, &proto.URLRecord{
			UrlId:       r.ID,
			OriginalUrl: r.OriginalURL,
			ShortUrl:    s.baseURL + "/" + r.ShortCode,
			ShortCode:   r.ShortCode,
			CustomAlias: r.CustomAlias,
			ClickCount:  r.ClickCount,
			IsActive:    r.IsActive,
			ExpiresAt:   formatTime(r.ExpiresAt),
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}

	return &proto.ListURLsResponse{
		Urls:  urls,
		Total: total,
		Pages: (total + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}

func (s *shortenerServer) UpdateURL(ctx context.Context, req *proto.UpdateURLRequest) (*proto.UpdateURLResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var upd storage.URLUpdate
	if req.CustomAlias != "" {
		alias := req.CustomAlias
		upd.CustomAlias = &alias
	}
	switch {
	case req.ClearExpiresAt:
		upd.ExpiresAt = storage.OptionalTime{Set: true}
	case req.ExpiresAt != "":
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "expires_at must be RFC 3339")
		}
		upd.ExpiresAt = storage.OptionalTime{Set: true, Value: &t}
	}
	if req.SetIsActive {
		active := req.IsActive
		upd.IsActive = &active
	}

	record, err := s.urls.UpdateURLRecord(ctx, req.UrlId, userID, upd)
	if err != nil {
		return nil, mapError(err)
	}

	return &proto.UpdateURLResponse{
		Url: &proto.URLRecord{
			UrlId:       record.ID,
			OriginalUrl: record.OriginalURL,
			ShortUrl:    s.baseURL + "/" + record.ShortCode,
			ShortCode:   record.ShortCode,
			CustomAlias: record.CustomAlias,
			ClickCount:  record.ClickCount,
			IsActive:    record.IsActive,
			ExpiresAt:   formatTime(record.ExpiresAt),
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		},
	}, nil
}

func (s *shortenerServer) DeleteURL(ctx context.Context, req *proto.DeleteURLRequest) (*proto.DeleteURLResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.urls.DeleteURLRecord(ctx, req.UrlId, userID); err != nil {
		return nil, mapError(err)
	}
	return &proto.DeleteURLResponse{Deleted: true}, nil
}

func (s *shortenerServer) Analytics(ctx context.Context, req *proto.AnalyticsRequest) (*proto.AnalyticsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.clicks.Aggregate(ctx, userID, int(req.Days))
	if err != nil {
		return nil, mapError(err)
	}

	clicksSeries := make([]*proto.DailyPoint, 0, len(report.DailyClicks))
	for _, p := range report.DailyClicks {
		clicksSeries = append(clicksSeries, &proto.DailyPoint{Date: p.Date, Count: p.Count})
	}
	visitorSeries := make([]*proto.DailyPoint, 0, len(report.DailyUniqueVisitors))
	for _, p := range report.DailyUniqueVisitors {
		visitorSeries = append(visitorSeries, &proto.DailyPoint{Date: p.Date, Count: p.Count})
	}

	return &proto.AnalyticsResponse{
		DailyClicks:         clicksSeries,
		DailyUniqueVisitors: visitorSeries,
		TotalClicks:         report.TotalClicks,
		TotalUniqueVisitors: report.TotalUniqueVisitors,
		TotalUrls:           report.TotalURLs,
		ActiveUrls:          report.ActiveURLs,
	}, nil
}

func (s *shortenerServer) URLStats(ctx context.Context, req *proto.URLStatsRequest) (*proto.URLStatsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.clicks.URLStats(ctx, req.UrlId, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return &proto.URLStatsResponse{
		UrlId:          stats.URLID,
		OriginalUrl:    stats.OriginalURL,
		ShortCode:      stats.ShortCode,
		ClickCount:     stats.ClickCount,
		TotalClicks:    stats.TotalClicks,
		UniqueVisitors: stats.UniqueVisitors,
		LastClick:      formatTime(stats.LastClick),
	}, nil
}

func (s *shortenerServer) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	available := s.urls.PingContext(ctx) == nil
	return &proto.PingResponse{StorageAvailable: available}, nil
}
