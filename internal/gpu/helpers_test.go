package gpu_test

import (
	"bytes"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu/gputest"
	"golang.org/x/exp/slog"
)

const (
	graphics = core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer
	compute  = core1_0.QueueCompute | core1_0.QueueTransfer
	transfer = core1_0.QueueTransfer
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

func newInstance(gpus ...*gputest.GPU) *gputest.Instance {
	return &gputest.Instance{GPUs: gpus, Log: &gputest.CallLog{}}
}
