// Package gpu negotiates capabilities with the graphics driver and acquires
// the objects the rest of an application needs: an instance, an optional
// diagnostics messenger, a physical device and a logical device with its
// graphics queue.
//
// The package talks to the driver only through the interfaces in driver.go.
// The vkng subpackage implements them on top of vkngwrapper.
package gpu
