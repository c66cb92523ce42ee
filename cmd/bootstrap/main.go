package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gpu-bootstrap/internal/app"
	"github.com/vkngwrapper/gpu-bootstrap/internal/config"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu/vkng"
	"github.com/vkngwrapper/gpu-bootstrap/internal/platform"
	"github.com/xlab/closer"
	"golang.org/x/exp/slog"
)

func init() {
	// SDL and the driver must be used from the main thread
	runtime.LockOSThread()
}

func main() {
	defer closer.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}))

	window, err := platform.OpenSDLWindow(config.WindowTitle, config.WindowWidth, config.WindowHeight)
	if err != nil {
		fatal(err)
	}

	loader, err := vkng.NewLoader(window.ProcAddr())
	if err != nil {
		window.Destroy()
		fatal(err)
	}

	application := app.New(window, loader, app.DefaultOptions(logger))
	// A signal only wakes the event loop; teardown stays on this thread.
	closer.Bind(application.Interrupt)

	err = application.Run()
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	msg := fmt.Sprintf("%+v", err)
	if hint := errors.FlattenHints(err); hint != "" {
		msg += "\nhint: " + hint
	}
	closer.Fatalln(msg)
}
