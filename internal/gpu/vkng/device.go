package vkng

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
)

type PhysicalDevice struct {
	device        core1_0.PhysicalDevice
	queueFamilies []gpu.QueueFamily
	loaded        bool
}

var _ gpu.PhysicalDevice = (*PhysicalDevice)(nil)

func (d *PhysicalDevice) Properties() (gpu.DeviceProperties, error) {
	properties, err := d.device.Properties()
	if err != nil {
		return gpu.DeviceProperties{}, err
	}
	return deviceProperties(properties), nil
}

// deviceProperties keeps the identifying fields. core v0.1 exposes the
// device name and type as DriverName and DriverType.
func deviceProperties(properties *core1_0.PhysicalDeviceProperties) gpu.DeviceProperties {
	return gpu.DeviceProperties{
		Name:     properties.DriverName,
		Type:     properties.DriverType,
		VendorID: properties.VendorID,
		DeviceID: properties.DeviceID,
	}
}

func (d *PhysicalDevice) loadQueueFamilies() {
	if d.loaded {
		return
	}
	for _, queueFamily := range d.device.QueueFamilyProperties() {
		d.queueFamilies = append(d.queueFamilies, gpu.QueueFamily{
			Flags:      queueFamily.QueueFlags,
			QueueCount: queueFamily.QueueCount,
		})
	}
	d.loaded = true
}

func (d *PhysicalDevice) QueueFamilyCount() int {
	d.loadQueueFamilies()
	return len(d.queueFamilies)
}

func (d *PhysicalDevice) QueueFamily(index int) gpu.QueueFamily {
	d.loadQueueFamilies()
	return d.queueFamilies[index]
}

func (d *PhysicalDevice) AvailableExtensions() ([]string, error) {
	extensions, _, err := d.device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, err
	}
	return sortedKeys(extensions), nil
}

func (d *PhysicalDevice) CreateDevice(info gpu.DeviceInfo) (gpu.Device, error) {
	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueFamily := range info.QueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily.FamilyIndex,
			QueuePriorities:  queueFamily.Priorities,
		})
	}

	device, _, err := d.device.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: info.ExtensionNames,
	})
	if err != nil {
		return nil, err
	}

	return &Device{device: device}, nil
}

type Device struct {
	device core1_0.Device
}

var _ gpu.Device = (*Device)(nil)

func (d *Device) GetQueue(familyIndex, queueIndex int) gpu.Queue {
	return &Queue{
		queue:       d.device.GetQueue(familyIndex, queueIndex),
		familyIndex: familyIndex,
		index:       queueIndex,
	}
}

func (d *Device) Destroy() {
	d.device.Destroy(nil)
}

type Queue struct {
	queue       core1_0.Queue
	familyIndex int
	index       int
}

var _ gpu.Queue = (*Queue)(nil)

func (q *Queue) FamilyIndex() int { return q.familyIndex }
func (q *Queue) Index() int       { return q.index }
