// Package rewriteconfig loads the TOML document that drives the rewriter:
// the split/filter/transformation rules plus the surrounding settings
// (directories, history, email, uploads). It is the bridge between the
// on-disk declarative format and internal/rewrite's runtime-agnostic Config.
package rewriteconfig

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tbielander/xtract/internal/rewrite"
)

// Dirs names the three working directories the pipeline rotates files
// through: where the original file to process arrives, where per-group
// transformed output is written, and where processed files are archived.
type Dirs struct {
	Original    string `toml:"original"`
	Transformed string `toml:"transformed"`
	History     string `toml:"history"`
}

// Timeformat holds the two Go time layouts the pipeline formats with: one
// for the per-run history subfolder name, one for the timestamp embedded in
// transformed output filenames.
type Timeformat struct {
	HistoryFolder string `toml:"history_folder"`
	Files         string `toml:"files"`
}

// Mailer holds SMTP connection settings; credentials are read from the
// SMTP_USER/SMTP_PW environment variables, never from this file.
type Mailer struct {
	SMTP string `toml:"smtp"`
	Port int    `toml:"port"`
	Auth bool   `toml:"auth"`
}

// EmailMessage holds the fixed envelope fields for a failure notification.
type EmailMessage struct {
	From    string   `toml:"from"`
	ReplyTo []string `toml:"reply_to"`
	To      []string `toml:"to"`
	Subject string   `toml:"subject"`
}

// Email groups the mailer transport and message envelope.
type Email struct {
	Mailer  Mailer       `toml:"mailer"`
	Message EmailMessage `toml:"message"`
}

// Settings holds the operational knobs that sit outside the rewrite rules
// themselves: language for the message catalog, history retention, the
// consistency pre-check toggle, directories and formats, and notification.
type Settings struct {
	Lang                      string     `toml:"lang"`
	HistorySize               int        `toml:"history_size"`
	ConsistencyCheck          bool       `toml:"consistency_check"`
	InconsistencyNotification bool       `toml:"inconsistency_notification"`
	Dirs                      Dirs       `toml:"dirs"`
	Timeformats               Timeformat `toml:"timeformats"`
	Email                     Email      `toml:"email"`
}

// Upload describes one destination the transformed output for a group may
// be pushed to after it is written (internal/upload drives this struct).
type Upload struct {
	Active  bool     `toml:"active"`
	Timeout float64  `toml:"timeout"`
	Protocol string  `toml:"protocol"`
	Server  string   `toml:"server"`
	Path    string   `toml:"path"`
	User    string   `toml:"user"`
	Key     string   `toml:"key"`
	Pubkey  string   `toml:"pubkey"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Filter is the on-disk form of the allow/block pattern tables.
type Filter struct {
	Residue        string              `toml:"residue"`
	Allowlist      map[string][]string `toml:"allowlist"`
	Blocklist      map[string][]string `toml:"blocklist"`
	AllowlistRegex map[string][]string `toml:"allowlist_regex"`
	BlocklistRegex map[string][]string `toml:"blocklist_regex"`
}

// Split is the on-disk form of the split-path and grouping configuration.
type Split struct {
	Declaration bool                         `toml:"declaration"`
	Default     string                       `toml:"default"`
	Grouping    map[string]map[string]string `toml:"grouping"`
}

// Transformation is the on-disk form of one rewrite rule.
type Transformation struct {
	Target        string              `toml:"target"`
	Keep          bool                `toml:"keep"`
	Value         string              `toml:"value"`
	Nodes         map[string]string   `toml:"nodes"`
	Source        Source              `toml:"source"`
	Parameters    map[string]string   `toml:"parameters"`
	Preconditions map[string][]string `toml:"preconditions"`
}

// Source names where a transformation's captured variables come from.
type Source struct {
	Datafields map[string]string `toml:"datafields"`
	Literals   map[string]string `toml:"literals"`
}

// Config is the full on-disk document: rewrite rules plus settings.
type Config struct {
	Element         string           `toml:"element"`
	Filter          Filter           `toml:"filter"`
	Split           Split            `toml:"split"`
	Transformations []Transformation `toml:"transformations"`
	Uploads         []Upload         `toml:"uploads"`
	Settings        Settings         `toml:"settings"`
}

// Load reads and parses the TOML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}
	return &cfg, nil
}

// RewriteConfig projects the on-disk document into internal/rewrite's
// runtime-agnostic Config — the shape the streaming rewriter actually
// consumes, stripped of everything that belongs to the surrounding pipeline
// (directories, mailer, uploads).
func (c *Config) RewriteConfig() *rewrite.Config {
	rc := &rewrite.Config{
		Element:              c.Element,
		PropagateDeclaration: c.Split.Declaration,
		DefaultGroup:         c.Split.Default,
		ResidueGroup:         c.Filter.Residue,
		Filter: rewrite.FilterTable{
			Allow: rewrite.PatternSet{Exact: c.Filter.Allowlist, Regex: c.Filter.AllowlistRegex},
			Block: rewrite.PatternSet{Exact: c.Filter.Blocklist, Regex: c.Filter.BlocklistRegex},
		},
		Grouping: rewrite.GroupingTable(c.Split.Grouping),
	}
	for _, t := range c.Transformations {
		rc.Transformations = append(rc.Transformations, rewrite.Transformation{
			Target:      t.Target,
			Keep:        t.Keep,
			Value:       t.Value,
			Nodes:       t.Nodes,
			Datafields:  t.Source.Datafields,
			Literals:    t.Source.Literals,
			Parameters:  t.Parameters,
			PreMissing:  t.Preconditions["missing"],
			PreExisting: t.Preconditions["existing"],
		})
	}
	return rc
}
