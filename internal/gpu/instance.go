package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/gpu-bootstrap/internal/config"
	"golang.org/x/exp/slog"
)

type InstanceOptions struct {
	Metadata         config.AppMetadata
	Extensions       ExtensionSet
	Layers           []string
	EnableValidation bool
	Logger           *slog.Logger
}

// InstanceHandle is a live instance together with the extensions and layers
// that were actually enabled on it.
type InstanceHandle struct {
	Instance

	Extensions ExtensionSet
	Layers     []string
}

// ValidationEnabled reports whether the instance was created with validation
// layers. It is false when validation was requested but downgraded.
func (h *InstanceHandle) ValidationEnabled() bool {
	return len(h.Layers) > 0
}

// CreateInstance creates the driver connection. Missing required extensions
// and driver rejection are fatal. Missing validation support is not: the
// instance is created without layers and a warning is logged.
func CreateInstance(loader Loader, options InstanceOptions) (*InstanceHandle, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	available, err := loader.AvailableExtensions()
	if err != nil {
		return nil, mark(err, ErrExtensionQueryFailed, "could not enumerate instance extensions")
	}
	for _, ext := range available {
		logger.Debug("supported instance extension", slog.String("name", ext))
	}

	validation := options.EnableValidation
	if validation {
		supported, err := ValidationLayersSupported(loader, options.Layers)
		if err != nil {
			return nil, err
		}

		if !supported {
			logger.Warn("validation layers requested but not available, continuing without validation",
				slog.Any("layers", options.Layers))
			validation = false
		} else if !contains(available, ext_debug_utils.ExtensionName) {
			logger.Warn("debug utils extension not available, continuing without validation",
				slog.String("extension", ext_debug_utils.ExtensionName))
			validation = false
		}
	}

	var names []string
	for _, ext := range options.Extensions.Names() {
		if ext == ext_debug_utils.ExtensionName && !validation {
			continue
		}
		if !contains(available, ext) {
			return nil, errors.WithHint(
				mark(nil, ErrInstanceCreationFailed, "missing required instance extension %s", ext),
				"the installed graphics driver does not support the windowing system; update or reinstall it",
			)
		}
		names = append(names, ext)
	}

	info := InstanceInfo{
		Metadata: options.Metadata,
	}

	// Needed to enumerate devices on portability implementations (MoltenVK)
	if contains(available, PortabilityEnumerationExtension) {
		names = append(names, PortabilityEnumerationExtension)
		info.EnumeratePortability = true
	}

	enabled := NewExtensionSet(names...)
	info.ExtensionNames = enabled.Names()

	var layers []string
	if validation {
		layers = append(layers, options.Layers...)
		info.LayerNames = layers
		messengerOptions := diagnosticsOptions(logger)
		info.Messenger = &messengerOptions
	}

	instance, err := loader.CreateInstance(info)
	if err != nil {
		return nil, errors.WithHint(
			mark(err, ErrInstanceCreationFailed, "driver rejected instance with extensions %v and layers %v", info.ExtensionNames, layers),
			"make sure a Vulkan driver is installed for this GPU",
		)
	}

	logger.Info("instance created",
		slog.Int("extensions", enabled.Len()),
		slog.Bool("validation", validation))

	return &InstanceHandle{
		Instance:   instance,
		Extensions: enabled,
		Layers:     layers,
	}, nil
}
