package browser

import (
	"encoding/json"
	"fmt"
)

// Per-step timeouts in milliseconds. Navigation gets longer than element
// operations because it spans a full page load.
const (
	stepTimeoutMs = 10000
	gotoTimeoutMs = 20000
	gotoSettleMs  = 2000
	waitDefaultMs = 2000
)

// Driver is the narrow browser surface the executor drives. Each action kind
// maps to exactly one method. The engine supplies a playwright-backed
// implementation; tests supply a scripted fake.
type Driver interface {
	Click(selector string, timeoutMs float64) error
	Fill(selector, value string, timeoutMs float64) error
	SelectOption(selector, value string, timeoutMs float64) error
	Check(selector string, timeoutMs float64) error
	Uncheck(selector string, timeoutMs float64) error
	Hover(selector string, timeoutMs float64) error
	Press(selector, key string, timeoutMs float64) error
	Goto(url string, timeoutMs float64) error
	Evaluate(js string) (interface{}, error)
	DragAndDrop(source, target string, timeoutMs float64) error
	WaitMs(ms float64)
}

// Interaction is a caller-supplied operation executed against the
// authenticated page, at most once, after authentication and before content
// extraction. The two variants are ActionSequence (mutating) and
// InspectionQuery (read-only).
type Interaction interface {
	Run(d Driver)
}

// ActionStep is one scripted UI action. Type selects the browser primitive;
// the remaining fields are per-kind.
type ActionStep struct {
	Type     string  `json:"type"`
	Selector string  `json:"selector,omitempty"`
	Value    string  `json:"value,omitempty"`
	URL      string  `json:"url,omitempty"`
	Key      string  `json:"key,omitempty"`
	JS       string  `json:"js,omitempty"`
	Source   string  `json:"source,omitempty"`
	Target   string  `json:"target,omitempty"`
	Ms       float64 `json:"ms,omitempty"`
}

// ActionResult is the per-step outcome. The result sequence always has one
// entry per input step, in input order, regardless of individual failures.
type ActionResult struct {
	Index     int            `json:"i"`
	Type      string         `json:"type"`
	OK        bool           `json:"ok"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorKind DiagnosticKind `json:"error_kind,omitempty"`
}

// ParseActions decodes a caller-supplied JSON action list. Malformed input is
// reported as an input diagnostic without attempting any browser interaction.
func ParseActions(raw string) ([]ActionStep, *Diagnostic) {
	var steps []ActionStep
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, NewDiagnostic(DiagInput, fmt.Sprintf("invalid actions JSON: %v", err))
	}
	return steps, nil
}

// ActionSequence executes its steps strictly in order. Steps are independent:
// a failed step is recorded and execution continues — there is no rollback or
// abort-on-error. A settle delay follows the last step so asynchronous page
// updates can complete before extraction.
type ActionSequence struct {
	Steps    []ActionStep
	SettleMs float64

	// ResolveURL rewrites goto targets onto the authenticated host and
	// enforces the navigation allowlist. Populated by the engine before Run.
	ResolveURL func(raw string) (string, error)

	Results []ActionResult
}

// Run implements Interaction.
func (a *ActionSequence) Run(d Driver) {
	a.Results = make([]ActionResult, 0, len(a.Steps))

	for i, step := range a.Steps {
		res := ActionResult{Index: i, Type: step.Type}

		switch step.Type {
		case "click":
			res = a.outcome(res, d.Click(step.Selector, stepTimeoutMs))
		case "fill":
			res = a.outcome(res, d.Fill(step.Selector, step.Value, stepTimeoutMs))
		case "select":
			res = a.outcome(res, d.SelectOption(step.Selector, step.Value, stepTimeoutMs))
		case "check":
			res = a.outcome(res, d.Check(step.Selector, stepTimeoutMs))
		case "uncheck":
			res = a.outcome(res, d.Uncheck(step.Selector, stepTimeoutMs))
		case "hover":
			res = a.outcome(res, d.Hover(step.Selector, stepTimeoutMs))
		case "press":
			key := step.Key
			if key == "" {
				key = "Enter"
			}
			res = a.outcome(res, d.Press(step.Selector, key, stepTimeoutMs))
		case "goto":
			res = a.outcome(res, a.navigate(d, step.URL))
		case "eval", "evaluate":
			value, err := d.Evaluate(step.JS)
			if err != nil {
				res = a.outcome(res, err)
				break
			}
			res.OK = true
			res.Result = Truncate(formatEvalResult(value), MaxEvalResult)
		case "drag":
			res = a.outcome(res, d.DragAndDrop(step.Source, step.Target, stepTimeoutMs))
		case "wait":
			ms := step.Ms
			if ms <= 0 {
				ms = waitDefaultMs
			}
			d.WaitMs(ms)
			res.OK = true
		default:
			// Unrecognized kinds are recorded without being attempted.
			res.Error = fmt.Sprintf("unknown action type: %q", step.Type)
			res.ErrorKind = DiagInput
		}

		a.Results = append(a.Results, res)
	}

	settle := a.SettleMs
	if settle <= 0 {
		settle = DefaultSettleMs
	}
	d.WaitMs(settle)
}

// navigate resolves the goto target and performs the navigation with a short
// settle so the landed page can render.
func (a *ActionSequence) navigate(d Driver, raw string) error {
	url := raw
	if a.ResolveURL != nil {
		resolved, err := a.ResolveURL(raw)
		if err != nil {
			return err
		}
		url = resolved
	}
	if err := d.Goto(url, gotoTimeoutMs); err != nil {
		return err
	}
	d.WaitMs(gotoSettleMs)
	return nil
}

// outcome converts a step error into the recorded result form.
func (a *ActionSequence) outcome(res ActionResult, err error) ActionResult {
	if err == nil {
		res.OK = true
		return res
	}
	diag := classifyError(err)
	res.Error = diag.Message
	res.ErrorKind = diag.Kind
	return res
}

func formatEvalResult(value interface{}) string {
	if value == nil {
		return "null"
	}
	if data, err := json.Marshal(value); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", value)
}
