package platform

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// SDLWindow is a Vulkan-capable SDL window. SDL must be driven from the main
// OS thread.
type SDLWindow struct {
	window *sdl.Window
}

func OpenSDLWindow(title string, width, height int32) (*SDLWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "could not initialize sdl video")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(err, "could not create %dx%d window", width, height)
	}

	return &SDLWindow{window: window}, nil
}

// InstanceExtensions returns the instance extensions SDL needs to present
// to this window.
func (w *SDLWindow) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// ProcAddr returns vkGetInstanceProcAddr from the Vulkan library SDL loaded.
func (w *SDLWindow) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *SDLWindow) Events() EventSource {
	return sdlEvents{}
}

// RequestClose queues a quit event so that the close request reaches the
// event loop on the thread that owns the window. It may be called from any
// goroutine.
func (w *SDLWindow) RequestClose() error {
	_, err := sdl.PushEvent(&sdl.QuitEvent{Type: sdl.QUIT, Timestamp: sdl.GetTicks()})
	if err != nil {
		return errors.Wrap(err, "could not push quit event")
	}
	return nil
}

func (w *SDLWindow) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

type sdlEvents struct{}

func (sdlEvents) WaitEvent() (Event, error) {
	event := sdl.WaitEvent()
	if event == nil {
		err := sdl.GetError()
		if err == nil {
			err = errors.New("sdl: WaitEvent returned no event")
		}
		return Event{}, errors.Wrap(err, "sdl: WaitEvent")
	}
	return translateEvent(event), nil
}

func (sdlEvents) PollEvent() (Event, bool) {
	event := sdl.PollEvent()
	if event == nil {
		return Event{}, false
	}
	return translateEvent(event), true
}

func translateEvent(event sdl.Event) Event {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Kind: EventCloseRequested}
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_CLOSE {
			return Event{Kind: EventCloseRequested}
		}
	}
	return Event{Kind: EventOther}
}
