package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyapply-engine/internal/answer"
	"easyapply-engine/internal/session"
)

type fakeNode struct {
	text     string
	attrs    map[string]string
	kids     map[string]session.Element
	lists    map[string][]session.Element
	clicked  bool
	typed    []string
	cleared  bool
	selected string
}

func (n *fakeNode) Text() (string, error) { return n.text, nil }

func (n *fakeNode) Attribute(name string) (string, error) { return n.attrs[name], nil }

func (n *fakeNode) HTML() (string, error) { return "", nil }

func (n *fakeNode) Click() error {
	n.clicked = true
	return nil
}

func (n *fakeNode) SendKeys(value string) error {
	n.typed = append(n.typed, value)
	return nil
}

func (n *fakeNode) PressEnter() error { return nil }

func (n *fakeNode) PressDown() error { return nil }

func (n *fakeNode) Clear() error {
	n.cleared = true
	return nil
}

func (n *fakeNode) SelectOption(text string) error {
	n.selected = text
	return nil
}

func (n *fakeNode) Find(loc session.Locator) (session.Element, error) {
	if el, ok := n.kids[loc.String()]; ok {
		return el, nil
	}
	return nil, session.ErrElementNotFound
}

func (n *fakeNode) FindAll(loc session.Locator) ([]session.Element, error) {
	return n.lists[loc.String()], nil
}

func testFillerPolicy() answer.Policy {
	return answer.Policy{
		Checkboxes:        map[string]bool{"legallyAuthorized": true},
		Experience:        map[string]int{"go": 3},
		ExperienceDefault: 1,
		PersonalInfo: map[string]string{
			"First Name":     "Jane",
			"Street address": "1 Main St",
			"City":           "Austin, Texas",
			"Zip":            "78701",
			"State":          "Texas",
		},
	}
}

func testFiller(sess session.Session) *Filler {
	policy := testFillerPolicy()
	resolver := answer.NewResolver(policy, nil, nil, false)
	return NewFiller(sess, resolver, policy, Uploads{Resume: "/tmp/resume.pdf"}, false)
}

func radioFieldset(question string, options ...string) (*fakeNode, []*fakeNode) {
	labels := make([]*fakeNode, 0, len(options))
	els := make([]session.Element, 0, len(options))
	for _, opt := range options {
		l := &fakeNode{text: opt}
		labels = append(labels, l)
		els = append(els, l)
	}
	fieldset := &fakeNode{
		kids:  map[string]session.Element{locRadioLabel.String(): &fakeNode{text: question}},
		lists: map[string][]session.Element{locLabel.String(): els},
	}
	return fieldset, labels
}

func TestFillRadioClicksResolvedOption(t *testing.T) {
	fieldset, labels := radioFieldset("Are you legally authorized to work?", "Yes", "No")
	el := &fakeNode{kids: map[string]session.Element{locFieldset.String(): fieldset}}

	f := testFiller(&fakeApplySess{})
	f.fillQuestion(context.Background(), el)

	assert.True(t, labels[0].clicked)
	assert.False(t, labels[1].clicked)
}

func TestFieldsetWinsOverInput(t *testing.T) {
	fieldset, labels := radioFieldset("Do you have a driver's license?", "Yes", "No")
	input := &fakeNode{attrs: map[string]string{"type": "text"}}
	el := &fakeNode{kids: map[string]session.Element{
		locFieldset.String(): fieldset,
		locInput.String():    input,
	}}

	f := testFiller(&fakeApplySess{})
	f.fillQuestion(context.Background(), el)

	// The radio path ran; the input was never touched.
	assert.True(t, labels[0].clicked || labels[1].clicked)
	assert.Empty(t, input.typed)
}

func TestFillTextNumericExperience(t *testing.T) {
	input := &fakeNode{attrs: map[string]string{"type": "numeric-i18n"}}
	el := &fakeNode{kids: map[string]session.Element{
		locInput.String(): input,
		locLabel.String(): &fakeNode{text: "How many years of work experience do you have with Go?"},
	}}

	f := testFiller(&fakeApplySess{})
	f.fillQuestion(context.Background(), el)

	assert.True(t, input.cleared)
	require.Len(t, input.typed, 1)
	assert.Equal(t, "3", input.typed[0])
}

func TestFillDropdownSelectsByText(t *testing.T) {
	options := []session.Element{
		&fakeNode{text: "Select an option"},
		&fakeNode{text: "Yes"},
		&fakeNode{text: "No"},
	}
	sel := &fakeNode{lists: map[string][]session.Element{locOption.String(): options}}
	el := &fakeNode{kids: map[string]session.Element{
		locSelect.String(): sel,
		locLabel.String():  &fakeNode{text: "Are you legally authorized to work?"},
	}}

	f := testFiller(&fakeApplySess{})
	f.fillQuestion(context.Background(), el)

	assert.Equal(t, "Yes", sel.selected)
}

func TestBareLabelIsConsentCheckbox(t *testing.T) {
	label := &fakeNode{text: "I agree to the terms"}
	el := &fakeNode{kids: map[string]session.Element{locLabel.String(): label}}

	f := testFiller(&fakeApplySess{})
	f.fillQuestion(context.Background(), el)

	assert.True(t, label.clicked)
}

func TestHomeAddressFields(t *testing.T) {
	street := &fakeNode{}
	zip := &fakeNode{}
	groups := []session.Element{
		&fakeNode{kids: map[string]session.Element{
			locLabel.String(): &fakeNode{text: "Street address"},
			locInput.String(): street,
		}},
		&fakeNode{kids: map[string]session.Element{
			locLabel.String(): &fakeNode{text: "ZIP / Postal code"},
			locInput.String(): zip,
		}},
	}
	form := &fakeNode{lists: map[string][]session.Element{locAddressGroup.String(): groups}}

	f := testFiller(&fakeApplySess{})
	f.homeAddress(form)

	require.Len(t, street.typed, 1)
	assert.Equal(t, "1 Main St", street.typed[0])
	require.Len(t, zip.typed, 1)
	assert.Equal(t, "78701", zip.typed[0])
}
