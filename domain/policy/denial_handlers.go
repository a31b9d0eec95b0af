package policy

import (
	"context"
	"log/slog"

	"github.com/superfaceai/one-sdk-sub004/domain/ports"
)

var (
	_ ports.DenialHandler = (*SlogDenialHandler)(nil)
	_ ports.DenialHandler = (*NopDenialHandler)(nil)
)

// SlogDenialHandler logs denials at warn level.
type SlogDenialHandler struct {
	logger *slog.Logger
}

// NewSlogDenialHandler logs through logger, or slog.Default() when nil.
func NewSlogDenialHandler(logger *slog.Logger) *SlogDenialHandler {
	return &SlogDenialHandler{logger: logger}
}

func (h *SlogDenialHandler) OnDenial(kind string, request any, reason string) {
	logger := h.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(context.Background(), "permission denied",
		"capability", kind,
		"request", request,
		"reason", reason,
	)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(string, any, string) {}
