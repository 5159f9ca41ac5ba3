package trace

import (
	"fmt"
	"time"
)

// footer classifies how the run ended.
//
//	state     script_execution   icon             error
//	running   any                progress         no
//	debugged  any                progress-wrench  no
//	stopped   finished           success          no
//	stopped   aborted/cancelled  alert            no
//	stopped   failed_*           alert            no
//	stopped   error              alert            yes
//	stopped   other              alert            yes
func footer(rec *Record, loc Localizer, location *time.Location) Entry {
	switch rec.State {
	case StateRunning:
		return Entry{Kind: KindFooter, Icon: IconProgress, Description: loc.Text(MsgStillRunning)}
	case StateDebugged:
		return Entry{Kind: KindFooter, Icon: IconProgressWrench, Description: loc.Text(MsgDebugged)}
	}

	finish := finishTime(rec)
	at := finish.In(location).Format(TimeLayout)
	runtime := fmt.Sprintf("%.2f", finish.Sub(rec.Timestamp.Start).Seconds())

	e := Entry{Kind: KindFooter, Icon: IconAlert}
	switch rec.ScriptExecution {
	case ExecutionFinished:
		e.Icon = IconSuccess
		e.Description = loc.Text(MsgFinished, at, runtime)
	case ExecutionAborted:
		e.Description = loc.Text(MsgAborted, at, runtime)
	case ExecutionCancelled:
		e.Description = loc.Text(MsgCancelled, at, runtime)
	case ExecutionFailedConditions:
		e.Description = loc.Text(MsgStoppedConditions, at, runtime)
	case ExecutionFailedSingle:
		e.Description = loc.Text(MsgStoppedSingle, at, runtime)
	case ExecutionFailedMaxRuns:
		e.Description = loc.Text(MsgStoppedMaxRuns, at, runtime)
	case ExecutionError:
		e.Error = true
		e.Description = loc.Text(MsgStoppedError, at, runtime, rec.Error)
	default:
		e.Error = true
		e.Description = loc.Text(MsgStoppedUnknown, at, runtime)
	}
	return e
}

// finishTime is the recorded finish, or the latest step execution when the
// recorder never stamped one.
func finishTime(rec *Record) time.Time {
	if rec.Timestamp.Finish != nil {
		return *rec.Timestamp.Finish
	}
	last := rec.Timestamp.Start
	for _, step := range rec.Steps {
		for _, e := range step.Executions {
			if e.Timestamp.After(last) {
				last = e.Timestamp
			}
		}
	}
	return last
}
