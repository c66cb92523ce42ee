package gpu

import "github.com/vkngwrapper/core/core1_0"

// QueueFamilyIndices records, per required capability, the first queue
// family index that provides it. A nil field means not found yet.
type QueueFamilyIndices struct {
	GraphicsFamily *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil
}

// FindQueueFamilies scans the device's queue families in index order and
// stops as soon as every required capability has a family. The result only
// depends on the device, so scanning the same device twice yields the same
// indices.
func FindQueueFamilies(device PhysicalDevice) QueueFamilyIndices {
	indices := QueueFamilyIndices{}
	count := device.QueueFamilyCount()

	for queueFamilyIdx := 0; queueFamilyIdx < count; queueFamilyIdx++ {
		queueFamily := device.QueueFamily(queueFamilyIdx)

		if indices.GraphicsFamily == nil && queueFamily.QueueCount > 0 && (queueFamily.Flags&core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}
