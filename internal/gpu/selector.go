package gpu

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// PhysicalDeviceID identifies a physical device across enumerations. Index
// is the position in the driver's enumeration order; the remaining fields
// are used to check that the index still refers to the same device.
type PhysicalDeviceID struct {
	Index    int
	VendorID uint32
	DeviceID uint32
	Name     string
}

func (id PhysicalDeviceID) String() string {
	return fmt.Sprintf("#%d %s (%04x:%04x)", id.Index, id.Name, id.VendorID, id.DeviceID)
}

func (id PhysicalDeviceID) matches(props DeviceProperties) bool {
	return id.VendorID == props.VendorID && id.DeviceID == props.DeviceID && id.Name == props.Name
}

func IsDeviceSuitable(device PhysicalDevice) bool {
	indices := FindQueueFamilies(device)
	return indices.IsComplete()
}

// SelectPhysicalDevice returns the identifier of the first enumerated device
// that is suitable. The device references themselves are not kept.
func SelectPhysicalDevice(instance Instance, logger *slog.Logger) (PhysicalDeviceID, error) {
	if logger == nil {
		logger = slog.Default()
	}

	physicalDevices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return PhysicalDeviceID{}, mark(err, ErrNoSuitableDevice, "could not enumerate physical devices")
	}

	for index, device := range physicalDevices {
		props, err := device.Properties()
		if err != nil {
			logger.Warn("skipping physical device with unreadable properties",
				slog.Int("index", index), slog.Any("error", err))
			continue
		}

		if !IsDeviceSuitable(device) {
			logger.Debug("physical device is not suitable",
				slog.Int("index", index), slog.String("name", props.Name))
			continue
		}

		logger.Info("selected physical device",
			slog.Int("index", index),
			slog.String("name", props.Name),
			slog.Any("type", props.Type))

		return PhysicalDeviceID{
			Index:    index,
			VendorID: props.VendorID,
			DeviceID: props.DeviceID,
			Name:     props.Name,
		}, nil
	}

	return PhysicalDeviceID{}, errors.WithHint(
		mark(nil, ErrNoSuitableDevice, "none of %d physical devices has a graphics-capable queue family", len(physicalDevices)),
		"a GPU with a graphics-capable queue family and an installed Vulkan driver is required",
	)
}

// ResolvePhysicalDevice enumerates the instance's devices again and returns
// the one id refers to. It fails if the device is gone or the index now
// refers to a different device.
func ResolvePhysicalDevice(instance Instance, id PhysicalDeviceID) (PhysicalDevice, error) {
	physicalDevices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "could not enumerate physical devices")
	}

	if id.Index < 0 || id.Index >= len(physicalDevices) {
		return nil, errors.Newf("physical device %s is no longer enumerated (%d devices)", id, len(physicalDevices))
	}

	device := physicalDevices[id.Index]
	props, err := device.Properties()
	if err != nil {
		return nil, errors.Wrapf(err, "could not read properties of physical device %s", id)
	}
	if !id.matches(props) {
		return nil, errors.Newf("physical device %s now refers to %q", id, props.Name)
	}

	return device, nil
}
