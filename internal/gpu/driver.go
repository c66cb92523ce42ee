package gpu

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/gpu-bootstrap/internal/config"
)

// Loader is the entry point into the graphics driver. It answers global
// capability queries and creates instances.
type Loader interface {
	AvailableExtensions() ([]string, error)
	AvailableLayers() ([]string, error)
	CreateInstance(info InstanceInfo) (Instance, error)
}

// Instance is a live connection to the driver. Physical devices are only
// reachable through it.
type Instance interface {
	EnumeratePhysicalDevices() ([]PhysicalDevice, error)
	CreateMessenger(options MessengerOptions) (Messenger, error)
	Destroy()
}

// PhysicalDevice is a transient, non-owning reference to an enumerated device.
// It must not outlive the enumeration that produced it; keep a PhysicalDeviceID
// instead and resolve it again when the device is needed.
type PhysicalDevice interface {
	Properties() (DeviceProperties, error)
	QueueFamilyCount() int
	QueueFamily(index int) QueueFamily
	AvailableExtensions() ([]string, error)
	CreateDevice(info DeviceInfo) (Device, error)
}

type Device interface {
	GetQueue(familyIndex, queueIndex int) Queue
	Destroy()
}

type Queue interface {
	FamilyIndex() int
	Index() int
}

type Messenger interface {
	Destroy()
}

type InstanceInfo struct {
	Metadata             config.AppMetadata
	ExtensionNames       []string
	LayerNames           []string
	EnumeratePortability bool

	// Messenger, when set, is chained into instance creation so that messages
	// emitted while creating and destroying the instance are captured too.
	Messenger *MessengerOptions
}

type DeviceInfo struct {
	QueueFamilies  []QueueRequest
	ExtensionNames []string
}

type QueueRequest struct {
	FamilyIndex int
	Priorities  []float32
}

type DeviceProperties struct {
	Name     string
	Type     core1_0.PhysicalDeviceType
	VendorID uint32
	DeviceID uint32
}

type QueueFamily struct {
	Flags      core1_0.QueueFlags
	QueueCount int
}
