package trace

import (
	"sort"
	"strconv"
	"time"
)

// DescribeFn turns an action config into human text. flow is the shape the
// walker classified the node as. It must be deterministic for a given
// config and locale.
type DescribeFn func(action ActionConfig, flow FlowType) string

// window bounds the executions a subtree may render. Zero bounds are open.
type window struct {
	from, to time.Time
}

func (w window) contains(ts time.Time) bool {
	if !w.from.IsZero() && ts.Before(w.from) {
		return false
	}
	if !w.to.IsZero() && !ts.Before(w.to) {
		return false
	}
	return true
}

// childMatcher selects, by segments relative to the parent, which paths in
// a subtree are rendered as direct children.
type childMatcher func(rel []string) bool

type walker struct {
	idx      *PathIndex
	describe DescribeFn
	loc      Localizer
	location *time.Location
	merger   *LogMerger
	tracker  *TimeGapTracker
	emit     Sink
}

// walk renders every top-level path in order.
func (w *walker) walk() {
	for i := 0; i < w.idx.Len(); {
		i = w.render(i, window{})
	}
}

// render emits the node at position i and its rendered descendants, using
// the first execution inside win. It returns the position of the next
// sibling.
func (w *walker) render(i int, win window) int {
	end := w.idx.SubtreeEnd(i)
	path := w.idx.Path(i)

	exec, ok := w.execution(i, win)
	if !ok {
		return end
	}
	if IsTriggerPath(path) {
		w.renderTrigger(i, exec)
		return end
	}

	w.catchUp(exec.Timestamp)

	value, err := w.idx.ConfigAt(i)
	if err != nil {
		w.emit(Entry{
			Kind:        KindPathError,
			Icon:        IconPathError,
			Path:        path,
			Description: w.loc.Text(MsgPathError, path),
		})
		return end
	}

	switch n := Classify(value).(type) {
	case SequenceNode:
		w.step(path, n.config, w.name(n.config, FlowSequence))
		w.renderChildren(i, end, win, matchSequence)
	case ChooseNode:
		w.renderChoose(i, end, win, n, exec)
	case IfNode:
		w.renderIf(i, end, win, n, exec)
	case RepeatNode:
		w.renderRepeat(i, end, win, n)
	case ParallelNode:
		w.renderParallel(i, end, win, n)
	case LeafNode:
		w.step(path, n.config, w.name(n.config, FlowLeaf))
	}
	return end
}

// catchUp drains logbook entries older than ts, then reports the gap.
func (w *walker) catchUp(ts time.Time) {
	w.merger.DrainBefore(ts)
	w.merger.Flush()
	w.tracker.MaybeReport(ts)
}

func (w *walker) renderTrigger(i int, exec StepExecution) {
	at := w.formatTime(exec.Timestamp)

	var text string
	trigger, _ := exec.ChangedVariables["trigger"].(map[string]any)
	switch {
	case trigger != nil && stringValue(trigger, "alias") != "":
		text = w.loc.Text(MsgTriggeredBy, stringValue(trigger, "alias"), at)
	case trigger != nil && stringValue(trigger, "description") != "":
		text = w.loc.Text(MsgTriggeredByThe, stringValue(trigger, "description"), at)
	default:
		text = w.loc.Text(MsgTriggeredManually, at)
	}

	w.emit(Entry{
		Kind:        KindTrigger,
		Icon:        IconTrigger,
		Path:        w.idx.Path(i),
		Description: text,
	})
}

func (w *walker) renderChoose(i, end int, win window, n ChooseNode, exec StepExecution) {
	name := w.name(n.config, FlowChoose)
	choice, chose := exec.Result["choice"]

	var (
		text  string
		match childMatcher = matchNone
	)
	switch {
	case chose && choice == "default":
		text = w.loc.Text(MsgChooseDefault, name)
		match = func(rel []string) bool {
			return len(rel) == 2 && rel[0] == "default"
		}
	case chose:
		idx, ok := choiceIndex(choice)
		if !ok {
			text = w.loc.Text(MsgChooseNamed, name, stringify(choice))
			break
		}
		text = w.loc.Text(MsgChooseNamed, name, w.optionName(n, idx))
		taken := strconv.Itoa(idx)
		match = func(rel []string) bool {
			return len(rel) == 4 && rel[0] == "choose" && rel[1] == taken && rel[2] == "sequence"
		}
	case exec.Error != "":
		text = w.loc.Text(MsgChooseError, name, exec.Error)
	default:
		text = w.loc.Text(MsgChooseNone, name)
	}

	w.step(w.idx.Path(i), n.config, text)
	w.renderChildren(i, end, win, match)
}

func (w *walker) optionName(n ChooseNode, idx int) string {
	if idx >= 0 && idx < len(n.Options) {
		if alias := Alias(n.Options[idx]); alias != "" {
			return alias
		}
	}
	return w.loc.Text(MsgChooseOption, idx)
}

func (w *walker) renderIf(i, end int, win window, n IfNode, exec StepExecution) {
	name := w.name(n.config, FlowIf)
	choice, _ := exec.Result["choice"].(string)

	var text string
	switch {
	case choice == "then":
		text = w.loc.Text(MsgIfThen, name)
	case choice == "else":
		text = w.loc.Text(MsgIfElse, name)
	case exec.Error != "":
		text = w.loc.Text(MsgIfError, name, exec.Error)
	default:
		text = w.loc.Text(MsgIfNone, name)
	}

	w.step(w.idx.Path(i), n.config, text)
	if choice == "then" || choice == "else" {
		w.renderChildren(i, end, win, func(rel []string) bool {
			return len(rel) == 2 && rel[0] == choice
		})
	}
}

// renderRepeat emits one summary, then the body once per iteration. Each
// iteration starts at an execution of the first body step and lasts until
// the next one.
func (w *walker) renderRepeat(i, end int, win window, n RepeatNode) {
	body := w.children(i, end, matchRepeatBody)

	var starts []time.Time
	if len(body) > 0 {
		for _, e := range w.idx.Executions(body[0]) {
			if win.contains(e.Timestamp) {
				starts = append(starts, e.Timestamp)
			}
		}
	}

	name := w.name(n.config, FlowRepeat)
	text := w.loc.Text(MsgRepeatIterations, name, len(starts))
	if len(starts) == 1 {
		text = w.loc.Text(MsgRepeatOnce, name)
	}
	w.step(w.idx.Path(i), n.config, text)

	for k, start := range starts {
		iter := window{from: start, to: win.to}
		if k+1 < len(starts) {
			iter.to = starts[k+1]
		}
		for _, c := range body {
			w.render(c, iter)
		}
	}
}

// renderParallel renders every branch, ordered by when it started.
func (w *walker) renderParallel(i, end int, win window, n ParallelNode) {
	w.step(w.idx.Path(i), n.config, w.name(n.config, FlowParallel))

	branches := w.children(i, end, matchParallelBranch)
	started := make(map[int]time.Time, len(branches))
	for _, b := range branches {
		if e, ok := w.execution(b, win); ok {
			started[b] = e.Timestamp
		}
	}
	sort.SliceStable(branches, func(a, b int) bool {
		return started[branches[a]].Before(started[branches[b]])
	})
	for _, b := range branches {
		w.render(b, win)
	}
}

// renderChildren renders the direct children of i selected by match.
func (w *walker) renderChildren(i, end int, win window, match childMatcher) {
	for _, c := range w.children(i, end, match) {
		w.render(c, win)
	}
}

// children lists positions of the direct children of i selected by match.
// A selected child's own subtree is never searched for further children.
func (w *walker) children(i, end int, match childMatcher) []int {
	var out []int
	for k := i + 1; k < end; {
		if match(w.idx.relative(k, i)) {
			out = append(out, k)
			k = w.idx.SubtreeEnd(k)
			continue
		}
		k++
	}
	return out
}

func (w *walker) step(path string, cfg ActionConfig, text string) {
	disabled := IsDisabled(cfg)
	if disabled {
		text = w.loc.Text(MsgDisabled, text)
	}
	w.emit(Entry{
		Kind:        KindStep,
		Icon:        IconStep,
		Path:        path,
		Description: text,
		Disabled:    disabled,
	})
}

// name is the node's alias, or a description of it.
func (w *walker) name(cfg ActionConfig, flow FlowType) string {
	if alias := Alias(cfg); alias != "" {
		return alias
	}
	return w.describe(cfg, flow)
}

// execution returns the first execution of i inside win.
func (w *walker) execution(i int, win window) (StepExecution, bool) {
	for _, e := range w.idx.Executions(i) {
		if win.contains(e.Timestamp) {
			return e, true
		}
	}
	return StepExecution{}, false
}

func (w *walker) formatTime(ts time.Time) string {
	return ts.In(w.location).Format(TimeLayout)
}

func matchNone([]string) bool { return false }

func matchSequence(rel []string) bool {
	return len(rel) == 2 && rel[0] == "sequence"
}

func matchRepeatBody(rel []string) bool {
	return len(rel) == 3 && rel[0] == "repeat" && rel[1] == "sequence"
}

func matchParallelBranch(rel []string) bool {
	return rel[0] == "parallel" &&
		(len(rel) == 2 || (len(rel) == 4 && rel[2] == "sequence"))
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
