package trace

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// sequentialRecord builds a flat run whose actions start gaps[i]
// milliseconds after the previous one.
func sequentialRecord(gaps []int) *Record {
	actions := make([]any, len(gaps))
	steps := Steps{step("trigger/0", run(0))}
	ms := 0
	for i, gap := range gaps {
		ms += gap
		actions[i] = call("light.turn_on")
		steps = append(steps, step("action/"+strconv.Itoa(i), run(ms)))
	}
	return finishedRecord(ActionConfig{"actions": actions}, steps...)
}

func TestReconstruct_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	gaps := gen.SliceOf(gen.IntRange(0, 3000))

	properties.Property("trigger first, single footer last", prop.ForAll(
		func(gaps []int) bool {
			got := Reconstruct(sequentialRecord(gaps), nil, testDescribe)
			return got[0].Kind == KindTrigger &&
				got[len(got)-1].Kind == KindFooter &&
				countKind(got, KindFooter) == 1
		},
		gaps,
	))

	properties.Property("one step entry per action", prop.ForAll(
		func(gaps []int) bool {
			got := Reconstruct(sequentialRecord(gaps), nil, testDescribe)
			return countKind(got, KindStep) == len(gaps)
		},
		gaps,
	))

	properties.Property("a time marker for every significant gap", prop.ForAll(
		func(gaps []int) bool {
			want := 0
			for _, g := range gaps {
				if g > 1000 {
					want++
				}
			}
			got := Reconstruct(sequentialRecord(gaps), nil, testDescribe)
			return countKind(got, KindTimeGap) == want
		},
		gaps,
	))

	properties.Property("deterministic", prop.ForAll(
		func(gaps []int) bool {
			rec := sequentialRecord(gaps)
			return reflect.DeepEqual(
				Reconstruct(rec, nil, testDescribe),
				Reconstruct(rec, nil, testDescribe),
			)
		},
		gaps,
	))

	properties.TestingRun(t)
}

func TestIsSignificant_Symmetric(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("order of arguments does not matter", prop.ForAll(
		func(a, b int) bool {
			return IsSignificant(at(a), at(b)) == IsSignificant(at(b), at(a))
		},
		gen.IntRange(-5000, 5000),
		gen.IntRange(-5000, 5000),
	))

	properties.TestingRun(t)
}

func TestLogMerger_KeepsEveryLine(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("every logbook entry is rendered exactly once", prop.ForAll(
		func(offsets []int) bool {
			var log []LogEntry
			ms := 0
			for i, off := range offsets {
				ms += off
				log = append(log, logAt(ms, "sensor.s"+strconv.Itoa(i), "on"))
			}
			lines := 0
			for _, e := range mergeAll(log) {
				if e.Kind != KindLogbook {
					continue
				}
				inline, hidden := e.Fold()
				lines += len(inline) + len(hidden)
			}
			return lines == len(log)
		},
		gen.SliceOf(gen.IntRange(0, 2500)),
	))

	properties.TestingRun(t)
}
