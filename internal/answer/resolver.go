package answer

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"easyapply-engine/internal/genai"
)

// Recorder receives every question the rule tables could not cover. The
// record is written before the generative fallback runs: an unprepared
// question stays unprepared even when the model supplies something.
type Recorder interface {
	RecordUnprepared(kind, question string)
}

// The placeholder is deliberately non-empty whitespace; required free-text
// fields reject the empty string but accept this.
const textPlaceholder = " ‏‏‎ "

type Resolver struct {
	policy Policy
	ai     genai.Answerer
	rec    Recorder
	today  func() time.Time
	debug  bool
}

func NewResolver(policy Policy, ai genai.Answerer, rec Recorder, debug bool) *Resolver {
	if ai == nil {
		ai = genai.Null{}
	}
	return &Resolver{policy: policy, ai: ai, rec: rec, today: time.Now, debug: debug}
}

// Resolve produces a concrete value for any question. It cannot fail: an
// unresolved question is converted into a recorded default, never an error
// and never an empty field.
func (r *Resolver) Resolve(ctx context.Context, q Question) Answer {
	q.Text = strings.ToLower(strings.TrimSpace(q.Text))

	var a Answer
	switch q.Kind {
	case KindRadio, KindDropdown:
		a = r.resolveChoice(ctx, q)
	case KindText, KindNumeric:
		a = r.resolveText(ctx, q)
	case KindDate:
		a = Answer{Value: r.today().Format("01/02/06"), Index: -1}
	case KindCheckbox:
		// Terms/consent boxes: activating them is the whole point.
		a = Answer{Value: "yes", Index: -1}
	default:
		a = Answer{Value: textPlaceholder, Index: -1}
	}

	if r.debug {
		log.Printf("[answer] %s %q -> %q (option %d)", q.Kind, q.Text, a.Value, a.Index)
	}
	return a
}

func (r *Resolver) resolveChoice(ctx context.Context, q Question) Answer {
	if len(q.Options) == 0 {
		return Answer{Index: -1, Skip: true}
	}

	for _, rule := range choiceRules {
		if matchesAny(q.Text, rule.keywords) {
			a := rule.pick(r.policy, q)
			if a.Record {
				r.record(q)
			}
			return a
		}
	}

	// No rule covers this question.
	r.record(q)
	if a, ok := r.askModelChoice(ctx, q); ok {
		return a
	}
	return lastOption(q.Options)
}

func (r *Resolver) resolveText(ctx context.Context, q Question) Answer {
	value, matched := r.textRuleValue(q)
	if !matched {
		r.record(q)
		value = r.askModelText(ctx, q)
	}

	if q.Kind == KindNumeric {
		value = coerceNumeric(value)
	} else if strings.TrimSpace(value) == "" {
		value = textPlaceholder
	}
	return Answer{Value: value, Index: -1}
}

func (r *Resolver) textRuleValue(q Question) (string, bool) {
	for _, rule := range textRules {
		if !matchesAny(q.Text, rule.keywords) {
			continue
		}
		if rule.name == "experience-years" {
			if years, ok := experienceYears(r.policy, q.Text); ok {
				return years, true
			}
			// The skill is not in the map: use the default but log the gap.
			r.record(q)
			return strconv.Itoa(r.policy.ExperienceDefault), true
		}
		return rule.value(r.policy, q), true
	}
	return "", false
}

// askModelChoice expects one option index back from the model. Anything out
// of range, non-numeric, or absent is a resolver failure.
func (r *Resolver) askModelChoice(ctx context.Context, q Question) (Answer, bool) {
	reply, err := r.ai.Answer(ctx, q.Text, string(q.Kind), q.Options)
	if err != nil {
		return Answer{}, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || idx < 0 || idx >= len(q.Options) {
		return Answer{}, false
	}
	return Answer{Value: q.Options[idx], Index: idx}, true
}

func (r *Resolver) askModelText(ctx context.Context, q Question) string {
	reply, err := r.ai.Answer(ctx, q.Text, string(q.Kind), nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(reply)
}

func (r *Resolver) record(q Question) {
	if r.rec == nil {
		return
	}
	r.rec.RecordUnprepared(string(q.Kind), q.Text)
}

// coerceNumeric keeps whatever parses as a number and turns everything else
// into "0"; a numeric field never receives text.
func coerceNumeric(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "0"
	}
	if _, err := strconv.Atoi(value); err == nil {
		return value
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "0"
}
