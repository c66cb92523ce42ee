package vkng

import (
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
)

type Messenger struct {
	messenger ext_debug_utils.Messenger
}

var _ gpu.Messenger = (*Messenger)(nil)

func (m *Messenger) Destroy() {
	m.messenger.Destroy(nil)
}

func messengerCreateInfo(options gpu.MessengerOptions) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	severity, msgType := captureFlags(options.Categories)
	callback := options.Callback

	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: severity,
		MessageType:     msgType,
		UserCallback: func(msgType ext_debug_utils.MessageTypes, severity ext_debug_utils.MessageSeverities, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			if callback != nil && data != nil {
				callback(gpu.Message{
					Category: messageCategory(severity, msgType),
					Text:     data.Message,
				})
			}
			return false
		},
	}
}

// captureFlags maps message categories onto the debug utils severity and
// type filters.
func captureFlags(categories gpu.MessageCategory) (ext_debug_utils.MessageSeverities, ext_debug_utils.MessageTypes) {
	var severity ext_debug_utils.MessageSeverities
	msgType := ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation

	if categories&gpu.CategoryError != 0 {
		severity |= ext_debug_utils.SeverityError
	}
	if categories&(gpu.CategoryWarning|gpu.CategoryPerformanceWarning) != 0 {
		severity |= ext_debug_utils.SeverityWarning
	}
	if categories&gpu.CategoryPerformanceWarning != 0 {
		msgType |= ext_debug_utils.TypePerformance
	}
	if categories&gpu.CategoryDebug != 0 {
		severity |= ext_debug_utils.SeverityVerbose
	}
	if categories&gpu.CategoryInformation != 0 {
		severity |= ext_debug_utils.SeverityInfo
	}

	return severity, msgType
}

func messageCategory(severity ext_debug_utils.MessageSeverities, msgType ext_debug_utils.MessageTypes) gpu.MessageCategory {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return gpu.CategoryError
	case severity&ext_debug_utils.SeverityWarning != 0 && msgType&ext_debug_utils.TypePerformance != 0:
		return gpu.CategoryPerformanceWarning
	case severity&ext_debug_utils.SeverityWarning != 0:
		return gpu.CategoryWarning
	case severity&ext_debug_utils.SeverityInfo != 0:
		return gpu.CategoryInformation
	default:
		return gpu.CategoryDebug
	}
}
