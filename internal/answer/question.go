// Package answer classifies application-form questions and resolves a
// concrete value for each one: config rules first, then the generative
// fallback, then deterministic defaults. Nothing escapes this package as an
// error and no field is ever left unset.
package answer

// Kind is the structural shape of a question field. Classification is done
// by the form walker (presence of a control, fixed priority order); the
// resolver only ever sees the outcome.
type Kind string

const (
	KindRadio    Kind = "radio"
	KindText     Kind = "text"
	KindNumeric  Kind = "numeric"
	KindDate     Kind = "date"
	KindDropdown Kind = "dropdown"
	KindCheckbox Kind = "checkbox"
)

// Question is one classified form field. Text is the lowercased label;
// Options keeps original casing and on-page order for choice kinds.
type Question struct {
	Kind    Kind
	Text    string
	Options []string
}

// IsChoice reports whether the question selects among enumerated options.
func (q Question) IsChoice() bool {
	return q.Kind == KindRadio || q.Kind == KindDropdown
}

// Answer is a resolved value. For choice kinds Index points into
// Question.Options and Value is that option's label; for text-like kinds
// Value is what gets typed. Skip means leave the field untouched (e.g.
// prefilled email dropdowns).
type Answer struct {
	Value string
	Index int
	Skip  bool
	// Record flags an answer produced without real policy coverage (an
	// experience claim for a skill the operator never listed); it still gets
	// logged as unprepared even though a rule matched.
	Record bool
}
