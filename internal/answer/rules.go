package answer

import (
	"fmt"
	"strconv"
	"strings"
)

// The keyword chains of the question policy live here as ordered rule
// tables, evaluated top to bottom with first-match-wins semantics. Each
// rule's keyword set is disjoint enough from the ones above it that order
// fully determines the outcome.

type choiceRule struct {
	name     string
	keywords []string
	pick     func(p Policy, q Question) Answer
}

type textRule struct {
	name     string
	keywords []string
	value    func(p Policy, q Question) string
}

func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// pickOption returns the first option whose lowercased text contains needle,
// falling back to the last option so a choice always lands somewhere.
func pickOption(options []string, needle string) Answer {
	needle = strings.ToLower(needle)
	for i, opt := range options {
		if strings.Contains(strings.ToLower(opt), needle) {
			return Answer{Value: opt, Index: i}
		}
	}
	return lastOption(options)
}

// pickBool maps a yes/no policy decision onto the rendered options.
func pickBool(options []string, yes bool) Answer {
	if yes {
		return pickOption(options, "yes")
	}
	return pickOption(options, "no")
}

func lastOption(options []string) Answer {
	if len(options) == 0 {
		return Answer{Index: -1}
	}
	i := len(options) - 1
	return Answer{Value: options[i], Index: i}
}

func boolRule(topic string) func(Policy, Question) Answer {
	return func(p Policy, q Question) Answer {
		return pickBool(q.Options, p.checkbox(topic))
	}
}

func alwaysNo(p Policy, q Question) Answer  { return pickBool(q.Options, false) }
func alwaysYes(p Policy, q Question) Answer { return pickBool(q.Options, true) }

// Demographic and EEO-style questions are answered with the decline-style
// option when one exists.
var declineKeywords = []string{"prefer", "decline", "don't", "specified", "none"}

func pickDecline(p Policy, q Question) Answer {
	for i, opt := range q.Options {
		lower := strings.ToLower(opt)
		// A bare "No" counts as declining. Matched exactly, not as a
		// substring, so options like "Latino" stay untouched.
		if lower == "no" {
			return Answer{Value: opt, Index: i}
		}
		for _, neg := range declineKeywords {
			if strings.Contains(lower, neg) {
				return Answer{Value: opt, Index: i}
			}
		}
	}
	return lastOption(q.Options)
}

func pickProficiency(p Policy, q Question) Answer {
	level := "none"
	for lang, lvl := range p.Languages {
		if strings.Contains(q.Text, strings.ToLower(lang)) {
			level = lvl
			break
		}
	}
	return pickOption(q.Options, level)
}

func pickDegree(p Policy, q Question) Answer {
	for _, degree := range p.DegreesCompleted {
		if strings.Contains(q.Text, strings.ToLower(degree)) {
			return pickBool(q.Options, true)
		}
	}
	return pickBool(q.Options, false)
}

func pickExperienceChoice(p Policy, q Question) Answer {
	for skill, years := range p.Experience {
		if years > 0 && strings.Contains(q.Text, strings.ToLower(skill)) {
			return pickBool(q.Options, true)
		}
	}
	a := pickBool(q.Options, false)
	a.Record = true
	return a
}

var choiceRules = []choiceRule{
	{"drivers-licence", []string{"driver's licence", "driver's license", "drivers license"}, boolRule("driversLicence")},
	{"demographic", []string{
		"aboriginal", "native", "indigenous", "tribe", "first nations",
		"native american", "native hawaiian", "inuit", "metis", "maori",
		"aborigine", "ancestral", "native peoples", "original people",
		"first people", "gender", "race", "disability", "latino", "torres",
		"do you identify",
	}, pickDecline},
	{"language-proficiency", []string{"proficiency"}, pickProficiency},
	{"assessment", []string{"assessment"}, boolRule("assessment")},
	{"security-clearance", []string{"clearance"}, boolRule("securityClearance")},
	{"sanctioned-country", []string{"north korea"}, alwaysNo},
	{"prior-employment", []string{"previously employ", "previous employ"}, alwaysNo},
	{"work-authorization", []string{"authorized", "authorised", "legally"}, boolRule("legallyAuthorized")},
	{"sponsorship", []string{"sponsor"}, boolRule("requireVisa")},
	{"citizenship", []string{"citizenship"}, boolRule("legallyAuthorized")},
	{"certification", []string{"certified", "certificate", "cpa", "chartered accountant", "qualification"}, boolRule("certifiedProfessional")},
	{"urgency", []string{"urgent"}, boolRule("urgentFill")},
	{"commute", []string{"commut", "on-site", "onsite", "hybrid"}, boolRule("commute")},
	{"remote", []string{"remote"}, boolRule("remote")},
	{"background-check", []string{"background check"}, boolRule("backgroundCheck")},
	{"drug-test", []string{"drug test"}, boolRule("drugTest")},
	{"residency", []string{"currently living", "currently reside", "right to live"}, func(p Policy, q Question) Answer {
		return pickBool(q.Options, p.ResidentStatus)
	}},
	{"adult", []string{"above 18"}, alwaysYes},
	{"country-code", []string{"country code"}, func(p Policy, q Question) Answer {
		return pickOption(q.Options, p.personal("Phone Country Code"))
	}},
	{"education-level", []string{"level of education"}, pickDegree},
	{"data-retention", []string{"data retention"}, alwaysNo},
	{"email-prefilled", []string{"email"}, func(Policy, Question) Answer {
		// Prefilled from the account; touching it only breaks it.
		return Answer{Skip: true, Index: -1}
	}},
	{"experience-claim", []string{"experience", "understanding", "familiar", "comfortable", "able to"}, pickExperienceChoice},
}

func formatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', -1, 64)
}

var textRules = []textRule{
	{"experience-years", []string{"experience", "how many years in"}, nil}, // handled in resolver: needs the miss-record path
	{"gpa", []string{"grade point average"}, func(p Policy, q Question) string {
		return formatGPA(p.UniversityGPA)
	}},
	{"first-name", []string{"first name"}, func(p Policy, q Question) string {
		return p.personal("First Name")
	}},
	{"last-name", []string{"last name"}, func(p Policy, q Question) string {
		return p.personal("Last Name")
	}},
	{"full-name", []string{"name"}, func(p Policy, q Question) string {
		return strings.TrimSpace(p.personal("First Name") + " " + p.personal("Last Name"))
	}},
	{"pronouns", []string{"pronouns"}, func(p Policy, q Question) string {
		return p.personal("Pronouns")
	}},
	{"phone", []string{"phone"}, func(p Policy, q Question) string {
		return p.personal("Mobile Phone Number")
	}},
	{"linkedin", []string{"linkedin"}, func(p Policy, q Question) string {
		return p.personal("Linkedin")
	}},
	{"message-to-manager", []string{"message to hiring", "cover letter"}, func(p Policy, q Question) string {
		return p.personal("MessageToManager")
	}},
	{"website", []string{"website", "github", "portfolio"}, func(p Policy, q Question) string {
		return p.personal("Website")
	}},
	{"notice-period", []string{"notice", "weeks"}, func(p Policy, q Question) string {
		return strconv.Itoa(p.NoticePeriod)
	}},
	{"salary", []string{"salary", "expectation", "compensation", "ctc"}, func(p Policy, q Question) string {
		return strconv.Itoa(p.SalaryMinimum)
	}},
}

// experienceYears answers "years of experience with X" questions from the
// skill map; ok is false when no listed skill appears in the question.
func experienceYears(p Policy, text string) (string, bool) {
	for skill, years := range p.Experience {
		if strings.Contains(text, strings.ToLower(skill)) {
			return fmt.Sprintf("%d", years), true
		}
	}
	return "", false
}
