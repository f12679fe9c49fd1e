// Package apply drives a single posting through the easy-apply modal: the
// step loop lives in machine.go and the per-step form filling lives here.
package apply

import (
	"context"
	"log"
	"strings"
	"time"

	"easyapply-engine/internal/answer"
	"easyapply-engine/internal/session"
)

var (
	locModalContent = session.ByCSS(".jobs-easy-apply-modal__content")
	locForm         = session.ByCSS("form")
	locSectionTitle = session.ByCSS("h3")
	locFormElement  = session.ByCSS(".fb-dash-form-element")
	locFieldset     = session.ByCSS("fieldset")
	locRadioLabel   = session.ByCSS(".fb-dash-form-element__label span")
	locLabel        = session.ByCSS("label")
	locInput        = session.ByCSS("input")
	locTextarea     = session.ByCSS("textarea")
	locDatePicker   = session.ByCSS(".artdeco-datepicker__input")
	locSelect       = session.ByCSS("select")
	locOption       = session.ByCSS("option")
	locAddressGroup = session.ByCSS(".jobs-easy-apply-form-section__grouping")
	locFileInput    = session.ByCSS("input[name='file']")

	locCountryCode = session.ByXPath(`//select[contains(@id,"phoneNumber")][contains(@id,"country")]`)
	locPhoneNumber = session.ByXPath(`//input[contains(@id,"phoneNumber")][contains(@id,"nationalNumber")]`)
)

// Uploads holds local file paths pushed into file inputs. CoverLetter may be
// empty; a required cover-letter slot then receives the resume instead.
type Uploads struct {
	Resume      string
	CoverLetter string
}

// Filler completes whatever form the current modal step shows. The section
// h3 decides which specialized path runs; everything else is walked as a
// generic question list.
type Filler struct {
	sess     session.Session
	resolver *answer.Resolver
	policy   answer.Policy
	uploads  Uploads
	debug    bool
}

func NewFiller(sess session.Session, resolver *answer.Resolver, policy answer.Policy, uploads Uploads, debug bool) *Filler {
	return &Filler{sess: sess, resolver: resolver, policy: policy, uploads: uploads, debug: debug}
}

// FillStep locates the modal form and dispatches on its section title. A
// missing modal or form is not an error here; the step loop decides what a
// bare step means.
func (f *Filler) FillStep(ctx context.Context) {
	modal, err := f.sess.Find(locModalContent)
	if err != nil {
		if f.debug {
			log.Printf("[apply] no modal content on this step: %v", err)
		}
		return
	}
	form, err := modal.Find(locForm)
	if err != nil {
		if f.debug {
			log.Printf("[apply] modal without form: %v", err)
		}
		return
	}

	title := ""
	if h3, err := form.Find(locSectionTitle); err == nil {
		if t, err := h3.Text(); err == nil {
			title = strings.ToLower(t)
		}
	}

	switch {
	case strings.Contains(title, "home address"):
		f.homeAddress(form)
	case strings.Contains(title, "contact info"):
		f.contactInfo(form)
	case strings.Contains(title, "resume"):
		f.uploadDocuments(form)
	default:
		f.additionalQuestions(ctx, form)
	}
}

func (f *Filler) homeAddress(form session.Element) {
	groups, err := form.FindAll(locAddressGroup)
	if err != nil {
		return
	}
	for _, group := range groups {
		label, err := group.Find(locLabel)
		if err != nil {
			continue
		}
		text, err := label.Text()
		if err != nil {
			continue
		}
		field, err := group.Find(locInput)
		if err != nil {
			continue
		}
		switch lb := strings.ToLower(text); {
		case strings.Contains(lb, "street"):
			f.enterText(field, f.policy.PersonalInfo["Street address"])
		case strings.Contains(lb, "city"):
			// City is a typeahead; the typed value only sticks after the
			// first suggestion is accepted.
			f.enterText(field, f.policy.PersonalInfo["City"])
			time.Sleep(3 * time.Second)
			_ = field.PressDown()
			_ = field.PressEnter()
		case strings.Contains(lb, "zip"), strings.Contains(lb, "postal"):
			f.enterText(field, f.policy.PersonalInfo["Zip"])
		case strings.Contains(lb, "state"), strings.Contains(lb, "province"):
			f.enterText(field, f.policy.PersonalInfo["State"])
		}
	}
}

func (f *Filler) contactInfo(form session.Element) {
	labels, err := form.FindAll(locLabel)
	if err != nil {
		return
	}
	for _, label := range labels {
		text, err := label.Text()
		if err != nil {
			continue
		}
		lb := strings.ToLower(text)
		if strings.Contains(lb, "email address") {
			// Prefilled from the profile.
			continue
		}
		if !strings.Contains(lb, "phone number") {
			continue
		}
		if picker, err := f.sess.Find(locCountryCode); err == nil {
			code := f.policy.PersonalInfo["Phone Country Code"]
			if err := picker.SelectOption(code); err != nil {
				log.Printf("[apply] country code %q not selectable, keep it identical to the profile value: %v", code, err)
			}
		}
		if field, err := f.sess.Find(locPhoneNumber); err == nil {
			f.enterText(field, f.policy.PersonalInfo["Mobile Phone Number"])
		}
	}
}

func (f *Filler) uploadDocuments(form session.Element) {
	inputs, err := form.FindAll(locFileInput)
	if err != nil || len(inputs) == 0 {
		return
	}
	for _, in := range inputs {
		caption, err := in.Find(session.ByXPath("../preceding-sibling::*"))
		if err != nil {
			continue
		}
		text, err := caption.Text()
		if err != nil {
			continue
		}
		switch lb := strings.ToLower(text); {
		case strings.Contains(lb, "resume"):
			f.sendFile(in, f.uploads.Resume)
		case strings.Contains(lb, "cover"):
			if f.uploads.CoverLetter != "" {
				f.sendFile(in, f.uploads.CoverLetter)
			} else if strings.Contains(lb, "required") {
				f.sendFile(in, f.uploads.Resume)
			}
		}
	}
}

func (f *Filler) sendFile(in session.Element, path string) {
	if path == "" {
		return
	}
	if err := in.SendKeys(path); err != nil {
		log.Printf("[apply] file upload failed for %s: %v", path, err)
	}
}

// additionalQuestions walks every form element and classifies it by probing
// for its structure in priority order: a fieldset means radio, an input or
// textarea means free text, then date picker, then select, then a bare
// label which is a consent checkbox.
func (f *Filler) additionalQuestions(ctx context.Context, form session.Element) {
	elements, err := form.FindAll(locFormElement)
	if err != nil {
		return
	}
	for _, el := range elements {
		f.fillQuestion(ctx, el)
	}
}

func (f *Filler) fillQuestion(ctx context.Context, el session.Element) {
	if fieldset, err := el.Find(locFieldset); err == nil {
		f.fillRadio(ctx, fieldset)
		return
	}
	if field, err := el.Find(locInput); err == nil {
		f.fillText(ctx, el, field)
		return
	}
	if field, err := el.Find(locTextarea); err == nil {
		f.fillText(ctx, el, field)
		return
	}
	if picker, err := el.Find(locDatePicker); err == nil {
		f.fillDate(ctx, picker)
		return
	}
	if sel, err := el.Find(locSelect); err == nil {
		f.fillDropdown(ctx, el, sel)
		return
	}
	if label, err := el.Find(locLabel); err == nil {
		// A lone label with no input underneath is a clickable consent box.
		f.fillCheckbox(ctx, label)
	}
}

func (f *Filler) fillCheckbox(ctx context.Context, label session.Element) {
	text := ""
	if t, err := label.Text(); err == nil {
		text = t
	}
	a := f.resolver.Resolve(ctx, answer.Question{Kind: answer.KindCheckbox, Text: text})
	if a.Skip {
		return
	}
	if err := label.Click(); err != nil && f.debug {
		log.Printf("[apply] checkbox click failed: %v", err)
	}
}

func (f *Filler) fillRadio(ctx context.Context, fieldset session.Element) {
	text := ""
	if span, err := fieldset.Find(locRadioLabel); err == nil {
		if t, err := span.Text(); err == nil {
			text = t
		}
	}
	labels, err := fieldset.FindAll(locLabel)
	if err != nil || len(labels) == 0 {
		return
	}
	options := make([]string, 0, len(labels))
	for _, l := range labels {
		t, err := l.Text()
		if err != nil {
			return
		}
		options = append(options, t)
	}

	a := f.resolver.Resolve(ctx, answer.Question{Kind: answer.KindRadio, Text: text, Options: options})
	if a.Skip {
		return
	}

	target := labels[len(labels)-1]
	if a.Index >= 0 && a.Index < len(labels) {
		target = labels[a.Index]
	} else if a.Value != "" {
		needle := strings.ToLower(a.Value)
		for i, opt := range options {
			if strings.Contains(strings.ToLower(opt), needle) {
				target = labels[i]
				break
			}
		}
	}
	if err := target.Click(); err != nil && f.debug {
		log.Printf("[apply] radio click failed for %q: %v", text, err)
	}
}

func (f *Filler) fillText(ctx context.Context, el, field session.Element) {
	text := ""
	if label, err := el.Find(locLabel); err == nil {
		if t, err := label.Text(); err == nil {
			text = t
		}
	}

	kind := answer.KindText
	if typ, err := field.Attribute("type"); err == nil && strings.Contains(strings.ToLower(typ), "numeric") {
		kind = answer.KindNumeric
	}

	a := f.resolver.Resolve(ctx, answer.Question{Kind: kind, Text: text})
	if a.Skip {
		return
	}
	f.enterText(field, a.Value)
}

func (f *Filler) fillDate(ctx context.Context, picker session.Element) {
	a := f.resolver.Resolve(ctx, answer.Question{Kind: answer.KindDate})
	if err := picker.Clear(); err != nil {
		return
	}
	if err := picker.SendKeys(a.Value); err != nil {
		return
	}
	time.Sleep(3 * time.Second)
	_ = picker.PressEnter()
}

func (f *Filler) fillDropdown(ctx context.Context, el, sel session.Element) {
	text := ""
	if label, err := el.Find(locLabel); err == nil {
		if t, err := label.Text(); err == nil {
			text = t
		}
	}
	opts, err := sel.FindAll(locOption)
	if err != nil {
		return
	}
	options := make([]string, 0, len(opts))
	for _, o := range opts {
		t, err := o.Text()
		if err != nil {
			return
		}
		options = append(options, t)
	}

	a := f.resolver.Resolve(ctx, answer.Question{Kind: answer.KindDropdown, Text: text, Options: options})
	if a.Skip || a.Value == "" {
		return
	}
	if err := sel.SelectOption(a.Value); err != nil && f.debug {
		log.Printf("[apply] dropdown select failed for %q: %v", text, err)
	}
}

func (f *Filler) enterText(field session.Element, value string) {
	if err := field.Clear(); err != nil {
		return
	}
	if err := field.SendKeys(value); err != nil && f.debug {
		log.Printf("[apply] text entry failed: %v", err)
	}
}
