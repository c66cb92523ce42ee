package gpu

import (
	"github.com/vkngwrapper/extensions/ext_debug_utils"
)

// PortabilityEnumerationExtension lets the loader report portability
// implementations such as MoltenVK. The pinned extensions module has no
// binding for it.
const PortabilityEnumerationExtension = "VK_KHR_portability_enumeration"

// ExtensionSet is an ordered set of instance extension names. It is built
// once and not modified afterwards.
type ExtensionSet struct {
	names []string
}

func NewExtensionSet(names ...string) ExtensionSet {
	set := ExtensionSet{}
	for _, name := range names {
		if !set.Contains(name) {
			set.names = append(set.names, name)
		}
	}
	return set
}

// Names returns a copy of the extension names in request order.
func (s ExtensionSet) Names() []string {
	return append([]string(nil), s.names...)
}

func (s ExtensionSet) Contains(name string) bool {
	return contains(s.names, name)
}

func (s ExtensionSet) Len() int {
	return len(s.names)
}

// RequiredExtensions returns the extensions the windowing layer needs, plus
// the debug utils extension when validation is enabled. Whether the driver
// supports them is checked when the instance is created.
func RequiredExtensions(windowExtensions []string, validation bool) ExtensionSet {
	names := append([]string(nil), windowExtensions...)
	if validation {
		names = append(names, ext_debug_utils.ExtensionName)
	}
	return NewExtensionSet(names...)
}

// ValidationLayersSupported reports whether every layer in layers is
// available in the driver installation.
func ValidationLayersSupported(loader Loader, layers []string) (bool, error) {
	available, err := loader.AvailableLayers()
	if err != nil {
		return false, mark(err, ErrExtensionQueryFailed, "could not enumerate instance layers")
	}

	for _, layer := range layers {
		if !contains(available, layer) {
			return false, nil
		}
	}

	return true, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
