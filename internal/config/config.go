// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ExperienceLevels struct {
	Internship bool `yaml:"internship"`
	EntryLevel bool `yaml:"entry_level"`
	Associate  bool `yaml:"associate"`
	MidSenior  bool `yaml:"mid_senior_level"`
	Director   bool `yaml:"director"`
	Executive  bool `yaml:"executive"`
}

type JobTypes struct {
	FullTime   bool `yaml:"full_time"`
	Contract   bool `yaml:"contract"`
	PartTime   bool `yaml:"part_time"`
	Temporary  bool `yaml:"temporary"`
	Internship bool `yaml:"internship"`
	Other      bool `yaml:"other"`
	Volunteer  bool `yaml:"volunteer"`
}

// DateRange flags are mutually exclusive; the first truthy one in field
// order wins (all time, month, week, 24 hours).
type DateRange struct {
	AllTime     bool `yaml:"all_time"`
	Month       bool `yaml:"month"`
	Week        bool `yaml:"week"`
	Last24Hours bool `yaml:"last_24_hours"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		Debug   bool   `yaml:"debug"`
		// Headless runs Chrome without a window. Security checkpoints that
		// need a human cannot be cleared in this mode.
		Headless bool `yaml:"headless"`
	} `yaml:"app"`

	Account struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		// UseKeyring pulls the password from the OS keychain instead of
		// keeping it in this file.
		UseKeyring bool `yaml:"use_keyring"`
	} `yaml:"account"`

	// ChallengeEmail lets the engine read a security-challenge PIN out of
	// the operator's mailbox instead of blocking on the console.
	ChallengeEmail struct {
		Enabled  bool   `yaml:"enabled"`
		IMAPHost string `yaml:"imap_host"`
		IMAPPort int    `yaml:"imap_port"`
		Username string `yaml:"username"`
		Mailbox  string `yaml:"mailbox"`
	} `yaml:"challenge_email"`

	Search struct {
		Positions              []string         `yaml:"positions"`
		Locations              []string         `yaml:"locations"`
		Distance               int              `yaml:"distance"`
		Remote                 bool             `yaml:"remote"`
		FewerThanTenApplicants bool             `yaml:"fewer_than_ten_applicants"`
		NewestFirst            bool             `yaml:"newest_first"`
		ExperienceLevels       ExperienceLevels `yaml:"experience_levels"`
		JobTypes               JobTypes         `yaml:"job_types"`
		Date                   DateRange        `yaml:"date"`
	} `yaml:"search"`

	Blacklist struct {
		Titles    []string `yaml:"titles"`
		Companies []string `yaml:"companies"`
		Posters   []string `yaml:"posters"`
	} `yaml:"blacklist"`

	Answers struct {
		Checkboxes       map[string]bool   `yaml:"checkboxes"`
		DegreesCompleted []string          `yaml:"degrees_completed"`
		Experience       map[string]int    `yaml:"experience"` // must contain "default"
		PersonalInfo     map[string]string `yaml:"personal_info"`
		Languages        map[string]string `yaml:"languages"`
		EEO              map[string]string `yaml:"eeo"`
		UniversityGPA    float64           `yaml:"university_gpa"`
		SalaryMinimum    int               `yaml:"salary_minimum"`
		NoticePeriod     int               `yaml:"notice_period"`
		ResidentStatus   bool              `yaml:"resident_status"`
	} `yaml:"answers"`

	Uploads struct {
		Resume      string `yaml:"resume"`
		CoverLetter string `yaml:"cover_letter"`
	} `yaml:"uploads"`

	AI struct {
		APIKey      string `yaml:"api_key"`
		BaseURL     string `yaml:"base_url"`
		Model       string `yaml:"model"`
		EvaluateFit bool   `yaml:"evaluate_fit"`
		// Profile is the candidate summary handed to the fit evaluator.
		Profile string `yaml:"profile"`
	} `yaml:"ai"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
