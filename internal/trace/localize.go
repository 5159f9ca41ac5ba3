package trace

import "fmt"

// Localizer supplies the engine's user-facing strings. Text formats the
// message registered under key with args, fmt style.
type Localizer interface {
	Text(key string, args ...any) string
}

// Message keys used by the engine. The catalog under locales/ must define
// every one of them.
const (
	MsgTriggeredBy       = "trace.triggered_by"
	MsgTriggeredByThe    = "trace.triggered_by_the"
	MsgTriggeredManually = "trace.triggered_manually"
	MsgTimeLater         = "trace.time_later"
	MsgUnitSecond        = "trace.unit.second"
	MsgUnitSeconds       = "trace.unit.seconds"
	MsgUnitMinute        = "trace.unit.minute"
	MsgUnitMinutes       = "trace.unit.minutes"
	MsgUnitHour          = "trace.unit.hour"
	MsgUnitHours         = "trace.unit.hours"
	MsgUnitDay           = "trace.unit.day"
	MsgUnitDays          = "trace.unit.days"
	MsgLogbookTurned     = "trace.logbook_turned"
	MsgPathError         = "trace.path_error"
	MsgDisabled          = "trace.disabled"
	MsgChooseDefault     = "trace.choose_default"
	MsgChooseOption      = "trace.choose_option"
	MsgChooseNamed       = "trace.choose_named"
	MsgChooseNone        = "trace.choose_none"
	MsgChooseError       = "trace.choose_error"
	MsgIfThen            = "trace.if_then"
	MsgIfElse            = "trace.if_else"
	MsgIfNone            = "trace.if_none"
	MsgIfError           = "trace.if_error"
	MsgRepeatOnce        = "trace.repeat_once"
	MsgRepeatIterations  = "trace.repeat_iterations"
	MsgStillRunning      = "trace.still_running"
	MsgDebugged          = "trace.debugged"
	MsgFinished          = "trace.finished"
	MsgAborted           = "trace.aborted"
	MsgCancelled         = "trace.cancelled"
	MsgStoppedConditions = "trace.stopped_failed_conditions"
	MsgStoppedSingle     = "trace.stopped_failed_single"
	MsgStoppedMaxRuns    = "trace.stopped_failed_max_runs"
	MsgStoppedError      = "trace.stopped_error"
	MsgStoppedUnknown    = "trace.stopped_unknown"
)

// englishMessages mirrors locales/en-US/trace.yaml. Unit messages are
// formats in their own right, hence the escaped verb.
var englishMessages = map[string]string{
	MsgTriggeredBy:       "Triggered by %s at %s",
	MsgTriggeredByThe:    "Triggered by the %s at %s",
	MsgTriggeredManually: "Triggered manually at %s",
	MsgTimeLater:         "%s later",
	MsgUnitSecond:        "1 second",
	MsgUnitSeconds:       "%%d seconds",
	MsgUnitMinute:        "1 minute",
	MsgUnitMinutes:       "%%d minutes",
	MsgUnitHour:          "1 hour",
	MsgUnitHours:         "%%d hours",
	MsgUnitDay:           "1 day",
	MsgUnitDays:          "%%d days",
	MsgLogbookTurned:     "turned %s",
	MsgPathError:         "Unable to extract path %s. Download trace and report as bug.",
	MsgDisabled:          "%s (disabled)",
	MsgChooseDefault:     "%s: Default action executed",
	MsgChooseOption:      "Choice %d",
	MsgChooseNamed:       "%s: %s executed",
	MsgChooseNone:        "%s: No action executed",
	MsgChooseError:       "%s: Error: %s",
	MsgIfThen:            "%s: Then action executed",
	MsgIfElse:            "%s: Else action executed",
	MsgIfNone:            "%s: No action executed",
	MsgIfError:           "%s: Error: %s",
	MsgRepeatOnce:        "%s: 1 iteration",
	MsgRepeatIterations:  "%s: %d iterations",
	MsgStillRunning:      "Still running",
	MsgDebugged:          "Debugged",
	MsgFinished:          "Finished at %s (runtime: %s seconds)",
	MsgAborted:           "Aborted at %s (runtime: %s seconds)",
	MsgCancelled:         "Cancelled at %s (runtime: %s seconds)",
	MsgStoppedConditions: "Stopped because a condition failed at %s (runtime: %s seconds)",
	MsgStoppedSingle:     "Stopped because only a single execution is allowed at %s (runtime: %s seconds)",
	MsgStoppedMaxRuns:    "Stopped because the maximum number of parallel runs was reached at %s (runtime: %s seconds)",
	MsgStoppedError:      "Stopped because an error was encountered at %s (runtime: %s seconds): %s",
	MsgStoppedUnknown:    "Stopped for an unknown reason at %s (runtime: %s seconds)",
}

// EnglishMessages returns a copy of the built-in English strings, keyed by
// message key.
func EnglishMessages() map[string]string {
	out := make(map[string]string, len(englishMessages))
	for k, v := range englishMessages {
		out[k] = v
	}
	return out
}

type englishLocalizer struct{}

// English returns the built-in English Localizer.
func English() Localizer { return englishLocalizer{} }

func (englishLocalizer) Text(key string, args ...any) string {
	format, ok := englishMessages[key]
	if !ok {
		return key
	}
	return fmt.Sprintf(format, args...)
}
