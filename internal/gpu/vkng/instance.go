package vkng

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
)

type Instance struct {
	instance core1_0.Instance
}

var _ gpu.Instance = (*Instance)(nil)

// EnumeratePhysicalDevices wraps the devices of a single enumeration. The
// returned values are not meant to be kept.
func (i *Instance) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, error) {
	physicalDevices, _, err := i.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]gpu.PhysicalDevice, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		devices = append(devices, &PhysicalDevice{device: device})
	}
	return devices, nil
}

func (i *Instance) CreateMessenger(options gpu.MessengerOptions) (gpu.Messenger, error) {
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(i.instance)
	messenger, _, err := debugLoader.CreateDebugUtilsMessenger(i.instance, nil, messengerCreateInfo(options))
	if err != nil {
		return nil, err
	}
	return &Messenger{messenger: messenger}, nil
}

func (i *Instance) Destroy() {
	i.instance.Destroy(nil)
}
