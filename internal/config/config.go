// Package config loads the on-call system configuration.
//
// Configuration lives in an INI file (default files/oncall_config.cfg,
// overridable through ONCALL_CONFIG). The default section names the files the
// system works on, keeping the key names of the historical config format; the
// paging section carries the remote paging-directory endpoint and
// credentials. A .env file next to the working directory is honoured for
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// DefaultPath is the config file location used when ONCALL_CONFIG is unset.
const DefaultPath = "files/oncall_config.cfg"

// Paging holds the remote paging-directory endpoint and credentials. Secrets
// are passed through from configuration; they are never generated or rotated
// here.
type Paging struct {
	URL          string
	Username     string
	Secret       string
	ContactGroup string
	Sites        []string
}

// Configured reports whether the paging directory can be reached with this
// configuration. Commands that do not page (add, now) run without it.
func (p Paging) Configured() bool {
	return p.URL != "" && p.Username != "" && p.Secret != ""
}

// Config captures every file path and credential the system needs.
type Config struct {
	ScheduleFile     string
	CurrentStateFile string
	UsersFile        string
	StatusPageFile   string
	StatusTemplate   string
	AuditDatabase    string
	Paging           Paging
}

// Load reads the configuration file, applies environment overrides and
// validates required entries, reporting every missing key at once.
func Load() (Config, error) {
	// Optional; a missing .env is not an error.
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	path := strings.TrimSpace(os.Getenv("ONCALL_CONFIG"))
	if path == "" {
		path = DefaultPath
	}

	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	defaults := file.Section(ini.DefaultSection)
	paging := file.Section("paging")

	cfg := Config{
		ScheduleFile:     strings.TrimSpace(defaults.Key("oc_sched_file").String()),
		CurrentStateFile: strings.TrimSpace(defaults.Key("oc_now_file").String()),
		UsersFile:        strings.TrimSpace(defaults.Key("oc_people_file").String()),
		StatusPageFile:   strings.TrimSpace(defaults.Key("oc_now_page").String()),
		StatusTemplate:   strings.TrimSpace(defaults.Key("oc_page_template").String()),
		AuditDatabase:    strings.TrimSpace(defaults.Key("oc_audit_db").String()),
		Paging: Paging{
			URL:          strings.TrimSpace(paging.Key("url").String()),
			Username:     strings.TrimSpace(paging.Key("username").String()),
			Secret:       strings.TrimSpace(paging.Key("secret").String()),
			ContactGroup: strings.TrimSpace(paging.Key("contact_group").String()),
			Sites:        splitList(paging.Key("sites").String()),
		},
	}

	if secret := strings.TrimSpace(os.Getenv("ONCALL_PAGING_SECRET")); secret != "" {
		cfg.Paging.Secret = secret
	}
	if cfg.Paging.ContactGroup == "" {
		cfg.Paging.ContactGroup = "oncall"
	}

	missing := make([]string, 0, 4)
	if cfg.ScheduleFile == "" {
		missing = append(missing, "oc_sched_file")
	}
	if cfg.CurrentStateFile == "" {
		missing = append(missing, "oc_now_file")
	}
	if cfg.UsersFile == "" {
		missing = append(missing, "oc_people_file")
	}
	if cfg.StatusPageFile == "" {
		missing = append(missing, "oc_now_page")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: %s is missing required entries: %s", path, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
