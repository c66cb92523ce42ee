// Package app runs the bootstrap sequence: it acquires the driver objects in
// dependency order, runs the event loop until the window is closed and
// releases everything in reverse order.
package app

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/gpu-bootstrap/internal/config"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
	"github.com/vkngwrapper/gpu-bootstrap/internal/platform"
	"golang.org/x/exp/slog"
)

// Window is the platform window the application runs in.
type Window interface {
	InstanceExtensions() []string
	Events() platform.EventSource
	// RequestClose makes the window's event source report a close request.
	// It may be called from any goroutine.
	RequestClose() error
	Destroy()
}

type Options struct {
	Metadata         config.AppMetadata
	EnableValidation bool
	ValidationLayers []string
	Logger           *slog.Logger
}

// DefaultOptions returns the options selected at build time.
func DefaultOptions(logger *slog.Logger) Options {
	return Options{
		Metadata:         config.DefaultMetadata(),
		EnableValidation: config.EnableValidationLayers,
		ValidationLayers: config.ValidationLayers,
		Logger:           logger,
	}
}

type Application struct {
	options Options
	logger  *slog.Logger

	window       Window
	requestClose func() error
	loader       gpu.Loader

	instance       *gpu.InstanceHandle
	debugMessenger gpu.Messenger

	physicalDevice gpu.PhysicalDeviceID
	device         gpu.Device

	graphicsQueue gpu.Queue

	bridge *platform.Bridge

	destroyOnce sync.Once
	done        chan struct{}
}

func New(window Window, loader gpu.Loader, options Options) *Application {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Application{
		options:      options,
		logger:       logger,
		window:       window,
		requestClose: window.RequestClose,
		loader:       loader,
		done:         make(chan struct{}),
	}
}

// Run initializes the application, blocks until the window is closed and
// releases everything it acquired, also when initialization or the event
// loop fails. It must be called at most once.
func (app *Application) Run() error {
	defer close(app.done)
	defer app.Destroy()

	err := app.Init()
	if err != nil {
		return err
	}

	return app.mainLoop()
}

// Interrupt asks a running application to shut down and blocks until Run has
// returned. The request is delivered as a window close, so teardown still
// happens on the goroutine that called Run. Interrupt may be called from any
// goroutine, and returns immediately once Run has finished.
func (app *Application) Interrupt() {
	select {
	case <-app.done:
		return
	default:
	}

	app.logger.Info("shutdown requested")
	if err := app.requestClose(); err != nil {
		app.logger.Warn("could not request window close", slog.Any("error", err))
	}
	<-app.done
}

// Init acquires the instance, diagnostics, physical device, logical device
// and event loop, in that order. It stops at the first fatal failure.
func (app *Application) Init() error {
	stages := []struct {
		name string
		run  func() error
	}{
		{"create instance", app.createInstance},
		{"setup diagnostics", app.setupDebugMessenger},
		{"pick physical device", app.pickPhysicalDevice},
		{"create logical device", app.createLogicalDevice},
		{"init event loop", app.initEventLoop},
	}

	for _, stage := range stages {
		start := hrtime.Now()
		if err := stage.run(); err != nil {
			return errors.Wrapf(err, "%s", stage.name)
		}
		app.logger.Debug("startup stage complete",
			slog.String("stage", stage.name),
			slog.Duration("elapsed", hrtime.Since(start)))
	}

	return nil
}

func (app *Application) createInstance() error {
	extensions := gpu.RequiredExtensions(app.window.InstanceExtensions(), app.options.EnableValidation)

	instance, err := gpu.CreateInstance(app.loader, gpu.InstanceOptions{
		Metadata:         app.options.Metadata,
		Extensions:       extensions,
		Layers:           app.options.ValidationLayers,
		EnableValidation: app.options.EnableValidation,
		Logger:           app.logger,
	})
	if err != nil {
		return err
	}

	app.instance = instance
	return nil
}

func (app *Application) setupDebugMessenger() error {
	app.debugMessenger = gpu.RegisterDiagnostics(app.instance, app.instance.ValidationEnabled(), app.logger)
	return nil
}

func (app *Application) pickPhysicalDevice() error {
	id, err := gpu.SelectPhysicalDevice(app.instance, app.logger)
	if err != nil {
		return err
	}

	app.physicalDevice = id
	return nil
}

func (app *Application) createLogicalDevice() error {
	device, queue, err := gpu.CreateLogicalDevice(app.instance, app.physicalDevice, app.logger)
	if err != nil {
		return err
	}

	app.device = device
	app.graphicsQueue = queue
	return nil
}

func (app *Application) initEventLoop() error {
	app.bridge = platform.NewBridge(app.window.Events(), app.logger)
	return nil
}

func (app *Application) mainLoop() error {
	for {
		closed, err := app.bridge.PollStep()
		if err != nil {
			return errors.Wrap(err, "main loop")
		}
		if closed {
			return nil
		}
	}
}

// Destroy releases the queue and device, then diagnostics, then the
// instance, then the window. It is safe to call more than once and after a
// failed Init.
func (app *Application) Destroy() {
	app.destroyOnce.Do(app.cleanup)
}

func (app *Application) cleanup() {
	// Queues are owned by the device.
	app.graphicsQueue = nil

	if app.device != nil {
		app.device.Destroy()
		app.device = nil
	}

	if app.debugMessenger != nil {
		app.debugMessenger.Destroy()
		app.debugMessenger = nil
	}

	if app.instance != nil {
		app.instance.Destroy()
		app.instance = nil
	}

	if app.window != nil {
		app.window.Destroy()
		app.window = nil
	}
}
