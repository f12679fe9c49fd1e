package answer

import "easyapply-engine/internal/config"

// Policy is the operator's prepared answers, immutable for the run.
type Policy struct {
	Checkboxes        map[string]bool
	DegreesCompleted  []string
	Experience        map[string]int
	ExperienceDefault int
	PersonalInfo      map[string]string
	Languages         map[string]string
	UniversityGPA     float64
	SalaryMinimum     int
	NoticePeriod      int
	ResidentStatus    bool
}

func PolicyFromConfig(cfg config.Config) Policy {
	a := cfg.Answers
	p := Policy{
		Checkboxes:       a.Checkboxes,
		DegreesCompleted: a.DegreesCompleted,
		Experience:       make(map[string]int, len(a.Experience)),
		PersonalInfo:     a.PersonalInfo,
		Languages:        a.Languages,
		UniversityGPA:    a.UniversityGPA,
		SalaryMinimum:    a.SalaryMinimum,
		NoticePeriod:     a.NoticePeriod,
		ResidentStatus:   a.ResidentStatus,
	}
	if p.Checkboxes == nil {
		p.Checkboxes = map[string]bool{}
	}
	if p.PersonalInfo == nil {
		p.PersonalInfo = map[string]string{}
	}
	if p.Languages == nil {
		p.Languages = map[string]string{}
	}
	for skill, years := range a.Experience {
		if skill == "default" {
			p.ExperienceDefault = years
			continue
		}
		p.Experience[skill] = years
	}
	return p
}

func (p Policy) checkbox(topic string) bool {
	return p.Checkboxes[topic]
}

func (p Policy) personal(key string) string {
	return p.PersonalInfo[key]
}
