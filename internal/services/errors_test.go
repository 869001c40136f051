package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"lyricsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "alignment", "uvx", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"alignment", "uvx", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		marker error
		want   int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrTimeout, http.StatusGatewayTimeout},
		{services.ErrExternalTool, http.StatusBadGateway},
		{services.ErrTransient, http.StatusBadGateway},
		{services.ErrConfiguration, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		err := services.Wrap(tt.marker, "translation", "stage1", "x", nil)
		if got := services.HTTPStatus(err); got != tt.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.marker, got, tt.want)
		}
	}
	if got := services.HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("plain error status = %d", got)
	}
}
