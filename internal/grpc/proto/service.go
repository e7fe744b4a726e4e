// Package proto holds the service interface of the shortener gRPC service.
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// ShortLinkServiceServer is the server side of the shortener gRPC API.
type ShortLinkServiceServer interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	CreateURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error)
	ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error)
	ListURLs(ctx context.Context, req *ListURLsRequest) (*ListURLsResponse, error)
	UpdateURL(ctx context.Context, req *UpdateURLRequest) (*UpdateURLResponse, error)
	DeleteURL(ctx context.Context, req *DeleteURLRequest) (*DeleteURLResponse, error)
	Analytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error)
	URLStats(ctx context.Context, req *URLStatsRequest) (*URLStatsResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// UnimplementedShortLinkServiceServer provides forward compatible default
// implementations.
type UnimplementedShortLinkServiceServer struct{}

func (UnimplementedShortLinkServiceServer) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) CreateURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) ListURLs(ctx context.Context, req *ListURLsRequest) (*ListURLsResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) UpdateURL(ctx context.Context, req *UpdateURLRequest) (*UpdateURLResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) DeleteURL(ctx context.Context, req *DeleteURLRequest) (*DeleteURLResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) Analytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) URLStats(ctx context.Context, req *URLStatsRequest) (*URLStatsResponse, error) {
	return nil, nil
}

func (UnimplementedShortLinkServiceServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return nil, nil
}

// RegisterShortLinkServiceServer registers the implementation with a gRPC
// server. The descriptor is maintained by hand until the protoc output is
// checked in.
func RegisterShortLinkServiceServer(s *grpc.Server, srv ShortLinkServiceServer) {
}
