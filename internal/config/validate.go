package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var approvedDistances = map[int]bool{0: true, 5: true, 10: true, 25: true, 50: true, 100: true}

var languageLevels = map[string]bool{
	"none":                true,
	"conversational":      true,
	"professional":        true,
	"native or bilingual": true,
}

// The sample config ships with a placeholder key; treating it as unset keeps
// the generative capability cleanly disabled instead of failing every call.
const placeholderAPIKey = "sk-proj-your-api-key"

// NormalizeAndValidate trims and dedups list fields, clears placeholder
// values, and returns the normalized copy with everything worth flagging.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Positions = trimList(out.Search.Positions)
	out.Search.Locations = trimList(out.Search.Locations)
	out.Blacklist.Titles = trimList(out.Blacklist.Titles)
	out.Blacklist.Companies = trimList(out.Blacklist.Companies)
	out.Blacklist.Posters = trimList(out.Blacklist.Posters)

	if out.AI.APIKey == placeholderAPIKey {
		out.AI.APIKey = ""
	}

	// ---- Validation rules ----

	if strings.TrimSpace(out.Account.Email) == "" || !strings.Contains(out.Account.Email, "@") {
		res.addErr("account.email must be a valid email address")
	}
	if !out.Account.UseKeyring && strings.TrimSpace(out.Account.Password) == "" {
		res.addErr("account.password is required unless account.use_keyring is set")
	}

	if len(out.Search.Positions) == 0 {
		res.addErr("search.positions must not be empty")
	}
	if len(out.Search.Locations) == 0 {
		res.addErr("search.locations must not be empty")
	}
	if !approvedDistances[out.Search.Distance] {
		res.addErr("search.distance must be one of 0, 5, 10, 25, 50, 100 (got %d)", out.Search.Distance)
	}

	el := out.Search.ExperienceLevels
	if !(el.Internship || el.EntryLevel || el.Associate || el.MidSenior || el.Director || el.Executive) {
		res.addErr("search.experience_levels: at least one level must be enabled")
	}
	jt := out.Search.JobTypes
	if !(jt.FullTime || jt.Contract || jt.PartTime || jt.Temporary || jt.Internship || jt.Other || jt.Volunteer) {
		res.addErr("search.job_types: at least one type must be enabled")
	}
	d := out.Search.Date
	if !(d.AllTime || d.Month || d.Week || d.Last24Hours) {
		res.addErr("search.date: at least one range must be enabled")
	}

	if len(out.Answers.Checkboxes) == 0 {
		res.addErr("answers.checkboxes must not be empty")
	}
	if _, ok := out.Answers.Experience["default"]; !ok {
		res.addErr("answers.experience must contain a \"default\" entry")
	}
	for lang, level := range out.Answers.Languages {
		if !languageLevels[strings.ToLower(level)] {
			res.addErr("answers.languages[%s]: unknown proficiency %q", lang, level)
		}
	}
	for key, val := range out.Answers.PersonalInfo {
		if strings.TrimSpace(val) == "" {
			res.addWarn("answers.personal_info[%s] is empty", key)
		}
	}

	if strings.TrimSpace(out.Uploads.Resume) == "" {
		res.addErr("uploads.resume is required")
	}

	if out.ChallengeEmail.Enabled {
		if strings.TrimSpace(out.ChallengeEmail.IMAPHost) == "" {
			res.addErr("challenge_email.imap_host is required when challenge_email.enabled=true")
		}
		if out.ChallengeEmail.IMAPPort == 0 {
			res.addErr("challenge_email.imap_port is required when challenge_email.enabled=true")
		}
		if strings.TrimSpace(out.ChallengeEmail.Username) == "" {
			res.addErr("challenge_email.username is required when challenge_email.enabled=true")
		}
		if strings.TrimSpace(out.ChallengeEmail.Mailbox) == "" {
			out.ChallengeEmail.Mailbox = "INBOX"
		}
	}

	if out.AI.EvaluateFit && out.AI.APIKey == "" {
		res.addWarn("ai.evaluate_fit is enabled but ai.api_key is not configured; fit checks will be skipped")
	}

	return out, res
}
