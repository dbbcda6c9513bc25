package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "sessiongate", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Error("expected no-op providers, got nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "://", "sessiongate", false); err == nil {
		t.Error("expected error for malformed endpoint")
	}
	if _, err := NewProviders(context.Background(), "http://", "sessiongate", false); err == nil {
		t.Error("expected error for missing host")
	}
}

func TestNewProviders_WithEndpoint(t *testing.T) {
	// Exporter construction does not dial; this validates option plumbing only.
	p, err := NewProviders(context.Background(), "localhost:4317", "sessiongate", true)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	p.SetGlobal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Shutdown(ctx)
}
