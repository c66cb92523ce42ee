package gpu

import (
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"golang.org/x/exp/slog"
)

const queuePriority = float32(1.0)

// CreateLogicalDevice resolves id against the live instance, re-derives the
// graphics queue family and creates a logical device with a single queue from
// it. It returns the device and that queue.
func CreateLogicalDevice(instance Instance, id PhysicalDeviceID, logger *slog.Logger) (Device, Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	physicalDevice, err := ResolvePhysicalDevice(instance, id)
	if err != nil {
		return nil, nil, mark(err, ErrDeviceCreationFailed, "could not resolve selected physical device")
	}

	indices := FindQueueFamilies(physicalDevice)
	if !indices.IsComplete() {
		return nil, nil, mark(nil, ErrDeviceCreationFailed, "physical device %s has no graphics-capable queue family", id)
	}

	var extensionNames []string

	// Makes this compatible with vulkan portability, necessary to run on mobile & mac
	extensions, err := physicalDevice.AvailableExtensions()
	if err != nil {
		return nil, nil, mark(err, ErrDeviceCreationFailed, "could not enumerate extensions of physical device %s", id)
	}
	if contains(extensions, khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	device, err := physicalDevice.CreateDevice(DeviceInfo{
		QueueFamilies: []QueueRequest{
			{FamilyIndex: *indices.GraphicsFamily, Priorities: []float32{queuePriority}},
		},
		ExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, nil, mark(err, ErrDeviceCreationFailed, "driver rejected logical device for %s", id)
	}

	queue := device.GetQueue(*indices.GraphicsFamily, 0)
	logger.Info("logical device created",
		slog.String("device", id.Name),
		slog.Int("graphicsFamily", *indices.GraphicsFamily))

	return device, queue, nil
}
