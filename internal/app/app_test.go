package app

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/gpu-bootstrap/internal/config"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu/gputest"
	"github.com/vkngwrapper/gpu-bootstrap/internal/platform"
	"golang.org/x/exp/slog"
)

// events yields one event per WaitEvent and reports a close request after
// n of them, or fails with err if it is set.
type events struct {
	n     int
	err   error
	waits int
}

func (e *events) WaitEvent() (platform.Event, error) {
	e.waits++
	if e.waits > e.n {
		if e.err != nil {
			return platform.Event{}, e.err
		}
		return platform.Event{Kind: platform.EventCloseRequested}, nil
	}
	return platform.Event{Kind: platform.EventOther}, nil
}

func (e *events) PollEvent() (platform.Event, bool) {
	return platform.Event{}, false
}

// queue delivers events sent from other goroutines and blocks while empty.
type queue chan platform.Event

func (q queue) WaitEvent() (platform.Event, error) {
	return <-q, nil
}

func (q queue) PollEvent() (platform.Event, bool) {
	select {
	case event := <-q:
		return event, true
	default:
		return platform.Event{}, false
	}
}

type window struct {
	source platform.EventSource
	log    *gputest.CallLog

	// closes receives a close request for each RequestClose call. Nil makes
	// RequestClose fail.
	closes   chan<- platform.Event
	requests int32
}

func (w *window) InstanceExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (w *window) Events() platform.EventSource { return w.source }
func (w *window) Destroy()                     { w.log.Record("window") }

func (w *window) RequestClose() error {
	atomic.AddInt32(&w.requests, 1)
	if w.closes == nil {
		return errors.New("window cannot be closed")
	}
	w.closes <- platform.Event{Kind: platform.EventCloseRequested}
	return nil
}

type fixture struct {
	log      *gputest.CallLog
	events   *events
	window   *window
	loader   *gputest.Loader
	instance *gputest.Instance
	target   *gputest.GPU
	logs     *bytes.Buffer
}

func newFixture(validation bool) (*fixture, *Application) {
	log := &gputest.CallLog{}
	target := gputest.NewGPU("Radeon RX", core1_0.QueueCompute, core1_0.QueueGraphics|core1_0.QueueCompute)
	instance := &gputest.Instance{
		GPUs: []*gputest.GPU{
			gputest.NewGPU("llvmpipe", core1_0.QueueCompute),
			gputest.NewGPU("decoder", core1_0.QueueTransfer),
			target,
		},
		Log: log,
	}
	loader := &gputest.Loader{
		Extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", ext_debug_utils.ExtensionName},
		Layers:     config.ValidationLayers,
		Instance:   instance,
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	source := &events{n: 3}
	f := &fixture{
		log:      log,
		events:   source,
		window:   &window{source: source, log: log},
		loader:   loader,
		instance: instance,
		target:   target,
		logs:     &buf,
	}
	options := DefaultOptions(logger)
	options.EnableValidation = validation
	return f, New(f.window, loader, options)
}

func TestRun(t *testing.T) {
	f, app := newFixture(true)

	if err := app.Run(); err != nil {
		t.Fatalf("Run: unexpected error %v", err)
	}

	if f.events.waits != 4 {
		t.Fatalf("poll steps\nhave %d\nwant 4", f.events.waits)
	}
	if app.physicalDevice.Index != 2 {
		t.Fatalf("selected device\nhave %v\nwant index 2", app.physicalDevice)
	}
	if len(f.target.Devices) != 1 {
		t.Fatalf("logical devices created on target\nhave %d\nwant 1", len(f.target.Devices))
	}
	if q := f.target.Devices[0].Queues; len(q) != 1 || q[0].FamilyIndex() != 1 {
		t.Fatalf("graphics queue not drawn from family 1: %+v", q)
	}
	if n := len(f.instance.Messengers); n != 1 {
		t.Fatalf("messengers\nhave %d\nwant 1", n)
	}
	for _, stage := range []string{"create instance", "setup diagnostics", "pick physical device", "create logical device", "init event loop"} {
		if !strings.Contains(f.logs.String(), "stage=\""+stage+"\"") {
			t.Fatalf("stage %q not logged:\n%s", stage, f.logs.String())
		}
	}
}

func TestTeardownOrder(t *testing.T) {
	f, app := newFixture(true)
	if err := app.Init(); err != nil {
		t.Fatalf("Init: unexpected error %v", err)
	}
	app.Destroy()

	want := []string{"device", "messenger", "instance", "window"}
	have := f.log.Calls()
	if strings.Join(have, ",") != strings.Join(want, ",") {
		t.Fatalf("teardown order\nhave %v\nwant %v", have, want)
	}
	if f.log.Index("device") > f.log.Index("instance") || f.log.Index("messenger") > f.log.Index("instance") {
		t.Fatalf("device and messenger must be released before the instance: %v", have)
	}

	app.Destroy()
	if n := len(f.log.Calls()); n != len(want) {
		t.Fatalf("second Destroy released objects again: %v", f.log.Calls())
	}
}

func TestRunWithoutValidation(t *testing.T) {
	f, app := newFixture(false)
	if err := app.Run(); err != nil {
		t.Fatalf("Run: unexpected error %v", err)
	}

	if n := len(f.instance.Messengers); n != 0 {
		t.Fatalf("messengers registered with validation off\nhave %d\nwant 0", n)
	}
	if info := f.loader.Created[0]; len(info.LayerNames) != 0 || info.Messenger != nil {
		t.Fatalf("validation configured with validation off: %+v", info)
	}
	want := "device,instance,window"
	if have := strings.Join(f.log.Calls(), ","); have != want {
		t.Fatalf("teardown order\nhave %s\nwant %s", have, want)
	}
}

func TestRunValidationUnavailable(t *testing.T) {
	f, app := newFixture(true)
	f.loader.Layers = nil

	if err := app.Run(); err != nil {
		t.Fatalf("Run must fall back without validation, got %v", err)
	}
	if n := len(f.instance.Messengers); n != 0 {
		t.Fatalf("messengers registered after fallback\nhave %d\nwant 0", n)
	}
}

func TestRunDiagnosticsRegistrationFails(t *testing.T) {
	f, app := newFixture(true)
	f.instance.MessengerErr = errors.New("VK_ERROR_OUT_OF_HOST_MEMORY")

	if err := app.Run(); err != nil {
		t.Fatalf("Run: diagnostics failure must not be fatal, got %v", err)
	}
	want := "device,instance,window"
	if have := strings.Join(f.log.Calls(), ","); have != want {
		t.Fatalf("teardown order\nhave %s\nwant %s", have, want)
	}
}

func TestRunFatalErrors(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(f *fixture)
		want      error
		teardown  string
		enumerate int
	}{
		{
			name:     "instance",
			mutate:   func(f *fixture) { f.loader.CreateErr = errors.New("VK_ERROR_INCOMPATIBLE_DRIVER") },
			want:     gpu.ErrInstanceCreationFailed,
			teardown: "window",
		},
		{
			name:      "no suitable device",
			mutate:    func(f *fixture) { f.instance.GPUs = f.instance.GPUs[:2] },
			want:      gpu.ErrNoSuitableDevice,
			teardown:  "messenger,instance,window",
			enumerate: 1,
		},
		{
			name:      "device creation",
			mutate:    func(f *fixture) { f.target.CreateErr = errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY") },
			want:      gpu.ErrDeviceCreationFailed,
			teardown:  "messenger,instance,window",
			enumerate: 2,
		},
	}
	for _, c := range cases {
		f, app := newFixture(true)
		c.mutate(f)

		err := app.Run()
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: Run error\nhave %v\nwant %v", c.name, err, c.want)
		}
		if have := strings.Join(f.log.Calls(), ","); have != c.teardown {
			t.Fatalf("%s: teardown\nhave %s\nwant %s", c.name, have, c.teardown)
		}
		if f.events.waits != 0 {
			t.Fatalf("%s: event loop ran after a fatal error", c.name)
		}
		if f.instance.Enumerations != c.enumerate {
			t.Fatalf("%s: enumerations\nhave %d\nwant %d", c.name, f.instance.Enumerations, c.enumerate)
		}
	}
}

func TestRunEventWaitFails(t *testing.T) {
	f, app := newFixture(true)
	cause := errors.New("event queue lost")
	f.events.err = cause

	err := app.Run()
	if !errors.Is(err, platform.ErrEventWait) {
		t.Fatalf("Run error\nhave %v\nwant %v", err, platform.ErrEventWait)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("Run error lost its cause: %v", err)
	}
	if f.events.waits != 4 {
		t.Fatalf("event waits\nhave %d\nwant 4", f.events.waits)
	}
	want := "device,messenger,instance,window"
	if have := strings.Join(f.log.Calls(), ","); have != want {
		t.Fatalf("teardown order\nhave %s\nwant %s", have, want)
	}
}

func TestInterrupt(t *testing.T) {
	f, app := newFixture(true)
	q := make(queue, 1)
	f.window.source = q
	f.window.closes = q

	result := make(chan error, 1)
	go func() { result <- app.Run() }()

	interrupted := make(chan struct{})
	go func() {
		app.Interrupt()
		close(interrupted)
	}()

	select {
	case <-interrupted:
	case <-time.After(5 * time.Second):
		t.Fatal("Interrupt did not return")
	}

	// Interrupt returns only once Run has released everything.
	want := "device,messenger,instance,window"
	if have := strings.Join(f.log.Calls(), ","); have != want {
		t.Fatalf("teardown when Interrupt returned\nhave %s\nwant %s", have, want)
	}
	if err := <-result; err != nil {
		t.Fatalf("Run: unexpected error %v", err)
	}
	if n := atomic.LoadInt32(&f.window.requests); n != 1 {
		t.Fatalf("close requests\nhave %d\nwant 1", n)
	}

	app.Interrupt()
	if n := atomic.LoadInt32(&f.window.requests); n != 1 {
		t.Fatalf("Interrupt after Run requested a close again: %d requests", n)
	}
	if n := len(f.log.Calls()); n != 4 {
		t.Fatalf("Interrupt after Run released objects again: %v", f.log.Calls())
	}
}

func TestInterruptAfterFailedInit(t *testing.T) {
	f, app := newFixture(true)
	f.loader.CreateErr = errors.New("VK_ERROR_INCOMPATIBLE_DRIVER")

	if err := app.Run(); !errors.Is(err, gpu.ErrInstanceCreationFailed) {
		t.Fatalf("Run error\nhave %v\nwant %v", err, gpu.ErrInstanceCreationFailed)
	}
	app.Interrupt()
	if n := atomic.LoadInt32(&f.window.requests); n != 0 {
		t.Fatalf("close requests after Run returned\nhave %d\nwant 0", n)
	}
}
