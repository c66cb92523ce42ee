package gpu

import (
	"context"
	"strings"

	"golang.org/x/exp/slog"
)

// MessageCategory classifies a message emitted by the driver's validation
// machinery.
type MessageCategory uint32

const (
	CategoryError MessageCategory = 1 << iota
	CategoryWarning
	CategoryPerformanceWarning
	CategoryDebug
	CategoryInformation
)

// DefaultMessageCategories subscribes to everything but informational
// messages.
const DefaultMessageCategories = CategoryError | CategoryWarning | CategoryPerformanceWarning | CategoryDebug

var categoryNames = []struct {
	category MessageCategory
	name     string
}{
	{CategoryError, "error"},
	{CategoryWarning, "warning"},
	{CategoryPerformanceWarning, "performance"},
	{CategoryDebug, "debug"},
	{CategoryInformation, "info"},
}

func (c MessageCategory) String() string {
	var parts []string
	for _, n := range categoryNames {
		if c&n.category != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

type Message struct {
	Category MessageCategory
	Text     string
}

// MessengerOptions selects the categories a messenger subscribes to and the
// callback that receives them. The callback may be invoked from any thread.
type MessengerOptions struct {
	Categories MessageCategory
	Callback   func(Message)
}

// RegisterDiagnostics subscribes to driver messages and forwards them to
// logger. It returns nil when diagnostics are disabled or the driver refuses
// the registration; both are valid steady states.
func RegisterDiagnostics(instance Instance, enabled bool, logger *slog.Logger) Messenger {
	if !enabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	messenger, err := instance.CreateMessenger(diagnosticsOptions(logger))
	if err != nil {
		err = mark(err, ErrDiagnosticsRegistrationFailed, "could not register debug messenger")
		logger.Warn("continuing without diagnostics", slog.Any("error", err))
		return nil
	}

	return messenger
}

func diagnosticsOptions(logger *slog.Logger) MessengerOptions {
	return MessengerOptions{
		Categories: DefaultMessageCategories,
		Callback:   forwardTo(logger, DefaultMessageCategories),
	}
}

func forwardTo(logger *slog.Logger, categories MessageCategory) func(Message) {
	return func(msg Message) {
		if msg.Category&categories == 0 {
			return
		}
		logger.Log(context.Background(), messageLevel(msg.Category), msg.Text,
			slog.String("category", msg.Category.String()))
	}
}

func messageLevel(category MessageCategory) slog.Level {
	switch {
	case category&CategoryError != 0:
		return slog.LevelError
	case category&(CategoryWarning|CategoryPerformanceWarning) != 0:
		return slog.LevelWarn
	case category&CategoryInformation != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
