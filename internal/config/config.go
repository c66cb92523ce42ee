// Package config holds the compile-time settings of the bootstrap sequence.
// There is no runtime configuration surface: validation is selected with the
// release build tag and everything else is fixed here.
package config

import (
	"github.com/vkngwrapper/core/common"
	"golang.org/x/exp/slog"
)

const (
	WindowTitle  = "Vulkan"
	WindowWidth  = 800
	WindowHeight = 600
)

var ValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// AppMetadata describes the application to the driver when the instance is
// created.
type AppMetadata struct {
	AppName       string
	AppVersion    common.Version
	EngineName    string
	EngineVersion common.Version
	APIVersion    common.APIVersion
}

func DefaultMetadata() AppMetadata {
	return AppMetadata{
		AppName:       "Hello Triangle",
		AppVersion:    common.CreateVersion(1, 0, 0),
		EngineName:    "No Engine",
		EngineVersion: common.CreateVersion(1, 0, 0),
		APIVersion:    common.Vulkan1_2,
	}
}

// LogLevel is Debug when validation is compiled in, Info otherwise.
func LogLevel() slog.Level {
	if EnableValidationLayers {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
