package interceptors

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

func TestClientIP_XForwardedFor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-forwarded-for": "203.0.113.7, 10.0.0.1",
	}))
	if got := ClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("ClientIP = %q, want 203.0.113.7", got)
	}
}

func TestClientIP_XRealIP(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"x-real-ip": "203.0.113.8",
	}))
	if got := ClientIP(ctx); got != "203.0.113.8" {
		t.Errorf("ClientIP = %q, want 203.0.113.8", got)
	}
}

func TestClientIP_Peer(t *testing.T) {
	addr, _ := net.ResolveTCPAddr("tcp", "192.0.2.4:5555")
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: addr})
	if got := ClientIP(ctx); got != "192.0.2.4" {
		t.Errorf("ClientIP = %q, want 192.0.2.4", got)
	}
}

func TestClientIP_Unknown(t *testing.T) {
	if got := ClientIP(context.Background()); got != "unknown" {
		t.Errorf("ClientIP = %q, want unknown", got)
	}
}

func TestUserAgent(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"user-agent": "grpc-go/1.78.0",
	}))
	if got := UserAgent(ctx); got != "grpc-go/1.78.0" {
		t.Errorf("UserAgent = %q, want grpc-go/1.78.0", got)
	}
	if got := UserAgent(context.Background()); got != "unknown" {
		t.Errorf("UserAgent on empty context = %q, want unknown", got)
	}
}
