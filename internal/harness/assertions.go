package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails. It carries enough
// context to debug the failure without rerunning the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Order    []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Block: [%s]", strings.Join(e.Order, ", "))
	return buf.String()
}

// evaluate checks every assertion and returns the failure messages.
func (h *Harness) evaluate(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.check(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func (h *Harness) check(result *Result, a Assertion) error {
	switch a.Type {
	case AssertOpOrder:
		return assertOpOrder(result, a)
	case AssertUses:
		return h.assertUses(result, a)
	case AssertValid:
		return assertValid(result)
	case AssertDiagnostic:
		return assertDiagnostic(result, a)
	case AssertTraceCount:
		return assertTraceCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertOpOrder checks the exact final block order.
func assertOpOrder(result *Result, a Assertion) error {
	if slices.Equal(result.Order, a.Ops) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOpOrder,
		Expected: fmt.Sprintf("[%s]", strings.Join(a.Ops, ", ")),
		Actual:   fmt.Sprintf("[%s]", strings.Join(result.Order, ", ")),
		Order:    result.Order,
	}
}

// assertUses checks the distinct users of a value, in use order.
func (h *Harness) assertUses(result *Result, a Assertion) error {
	v, err := h.prog.value(a.Value)
	if err != nil {
		return err
	}
	users := []string{}
	for _, op := range v.Users() {
		users = append(users, h.prog.name(op))
	}
	want := a.Users
	if want == nil {
		want = []string{}
	}
	if slices.Equal(users, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertUses,
		Expected: fmt.Sprintf("%s used by [%s]", a.Value, strings.Join(want, ", ")),
		Actual:   fmt.Sprintf("used by [%s]", strings.Join(users, ", ")),
		Order:    result.Order,
	}
}

func assertValid(result *Result) error {
	if len(result.Diagnostics) == 0 {
		return nil
	}
	msgs := make([]string, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Op, d.Message)
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: "no diagnostics",
		Actual:   strings.Join(msgs, "; "),
		Order:    result.Order,
	}
}

// assertDiagnostic checks that op failed verification with exactly message.
func assertDiagnostic(result *Result, a Assertion) error {
	var got []string
	for _, d := range result.Diagnostics {
		if d.Op != a.Op {
			continue
		}
		if d.Message == a.Message {
			return nil
		}
		got = append(got, d.Message)
	}
	actual := "no diagnostic"
	if len(got) > 0 {
		actual = strings.Join(got, "; ")
	}
	return &AssertionError{
		Type:     AssertDiagnostic,
		Expected: fmt.Sprintf("%s: %s", a.Op, a.Message),
		Actual:   actual,
		Order:    result.Order,
	}
}

func assertTraceCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if ev.Kind == a.Event {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s event(s)", a.Count, a.Event),
		Actual:   fmt.Sprintf("%d", count),
		Order:    result.Order,
	}
}
