// Package vkng binds the gpu driver interfaces to vkngwrapper.
package vkng

import (
	"sort"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
)

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const instanceCreateEnumeratePortability core1_0.InstanceCreateFlags = 0x00000001

type Loader struct {
	loader core.Loader
}

var _ gpu.Loader = (*Loader)(nil)

// NewLoader creates a loader from a vkGetInstanceProcAddr pointer, as
// returned by sdl.VulkanGetVkGetInstanceProcAddr.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	loader, err := core.CreateLoaderFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "could not create vulkan loader")
	}
	return &Loader{loader: loader}, nil
}

func (l *Loader) AvailableExtensions() ([]string, error) {
	extensions, _, err := l.loader.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return sortedKeys(extensions), nil
}

func (l *Loader) AvailableLayers() ([]string, error) {
	layers, _, err := l.loader.AvailableLayers()
	if err != nil {
		return nil, err
	}
	return sortedKeys(layers), nil
}

func (l *Loader) CreateInstance(info gpu.InstanceInfo) (gpu.Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       info.Metadata.AppName,
		ApplicationVersion:    info.Metadata.AppVersion,
		EngineName:            info.Metadata.EngineName,
		EngineVersion:         info.Metadata.EngineVersion,
		APIVersion:            info.Metadata.APIVersion,
		EnabledExtensionNames: info.ExtensionNames,
		EnabledLayerNames:     info.LayerNames,
	}

	if info.EnumeratePortability {
		instanceOptions.Flags |= instanceCreateEnumeratePortability
	}

	if info.Messenger != nil {
		instanceOptions.Next = messengerCreateInfo(*info.Messenger)
	}

	instance, _, err := l.loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, err
	}

	return &Instance{instance: instance}, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
