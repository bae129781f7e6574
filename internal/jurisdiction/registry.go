package jurisdiction

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed jurisdictions.yaml
var defaultTable []byte

// ErrUnknownJurisdiction is returned by Lookup for codes absent from the table.
var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

// GenericPattern is the fallback registration syntax used for jurisdictions
// whose table entry carries no registration_pattern: an alphabetic prefix of at
// least 3 letters, one separator ('-', '/' or space) and at least 4 digits.
// Verdicts produced with it are reported as degraded.
var GenericPattern = regexp.MustCompile(`(?i)^[A-Z]{3,}[-/ ]\d{4,}$`)

// Rule is the immutable regulatory entry for one jurisdiction.
type Rule struct {
	Code                 string  `json:"code"`
	Country              string  `json:"country"`
	City                 string  `json:"city"`
	AuthorityName        string  `json:"authority_name"`
	RegistrationPattern  string  `json:"registration_pattern,omitempty"`
	Example              string  `json:"example"`
	CommissionCapPercent float64 `json:"commission_cap_percent"`
	VATPercent           float64 `json:"vat_percent"`

	pattern *regexp.Regexp
}

// HasSpecificPattern reports whether the rule defines its own registration syntax.
func (r Rule) HasSpecificPattern() bool {
	return r.pattern != nil
}

// Match tests a trimmed registration number against the rule's own pattern,
// or against GenericPattern when the rule has none. generic is true when the
// fallback decided the result.
func (r Rule) Match(registration string) (matched, generic bool) {
	if r.pattern == nil {
		return GenericPattern.MatchString(registration), true
	}
	return r.pattern.MatchString(registration), false
}

type tableFile struct {
	Jurisdictions []tableEntry `yaml:"jurisdictions"`
}

type tableEntry struct {
	Code                 string  `yaml:"code"`
	Country              string  `yaml:"country"`
	City                 string  `yaml:"city"`
	Authority            string  `yaml:"authority"`
	RegistrationPattern  string  `yaml:"registration_pattern"`
	Example              string  `yaml:"example"`
	CommissionCapPercent float64 `yaml:"commission_cap_percent"`
	VATPercent           float64 `yaml:"vat_percent"`
}

// Registry maps jurisdiction codes to rules. It is never mutated after Load
// returns, so a *Registry may be shared by any number of goroutines.
type Registry struct {
	rules map[string]Rule
	codes []string
}

var defaultRegistry = mustParse(defaultTable)

func mustParse(data []byte) *Registry {
	reg, err := Load(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("jurisdiction: embedded table: %v", err))
	}
	return reg
}

// Default returns the registry built from the embedded table.
func Default() *Registry {
	return defaultRegistry
}

// Load parses a YAML jurisdiction table and compiles every pattern.
func Load(r io.Reader) (*Registry, error) {
	var tf tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	if len(tf.Jurisdictions) == 0 {
		return nil, errors.New("table has no jurisdictions")
	}

	reg := &Registry{rules: make(map[string]Rule, len(tf.Jurisdictions))}
	for i, e := range tf.Jurisdictions {
		rule, err := buildRule(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Code, err)
		}
		if _, dup := reg.rules[rule.Code]; dup {
			return nil, fmt.Errorf("entry %d: duplicate code %q", i, rule.Code)
		}
		reg.rules[rule.Code] = rule
		reg.codes = append(reg.codes, rule.Code)
	}
	sort.Strings(reg.codes)
	return reg, nil
}

func buildRule(e tableEntry) (Rule, error) {
	code := normalizeCode(e.Code)
	if code == "" {
		return Rule{}, errors.New("code is required")
	}
	if strings.TrimSpace(e.Authority) == "" {
		return Rule{}, errors.New("authority is required")
	}
	if e.CommissionCapPercent < 0 || e.CommissionCapPercent > 100 {
		return Rule{}, fmt.Errorf("commission cap %.2f outside [0, 100]", e.CommissionCapPercent)
	}
	if e.VATPercent < 0 || e.VATPercent > 100 {
		return Rule{}, fmt.Errorf("vat %.2f outside [0, 100]", e.VATPercent)
	}

	rule := Rule{
		Code:                 code,
		Country:              e.Country,
		City:                 e.City,
		AuthorityName:        e.Authority,
		RegistrationPattern:  e.RegistrationPattern,
		Example:              e.Example,
		CommissionCapPercent: e.CommissionCapPercent,
		VATPercent:           e.VATPercent,
	}
	if e.RegistrationPattern != "" {
		re, err := regexp.Compile(`(?i)^(?:` + e.RegistrationPattern + `)$`)
		if err != nil {
			return Rule{}, fmt.Errorf("registration pattern: %w", err)
		}
		rule.pattern = re
	}
	// The example doubles as a self-check of the pattern.
	if e.Example != "" {
		if ok, _ := rule.Match(e.Example); !ok {
			return Rule{}, fmt.Errorf("example %q does not match its own pattern", e.Example)
		}
	}
	return rule, nil
}

// Lookup resolves a code (case-insensitive, surrounding spaces ignored).
func (r *Registry) Lookup(code string) (Rule, error) {
	rule, ok := r.rules[normalizeCode(code)]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, code)
	}
	return rule, nil
}

// Codes returns every registered code in ascending order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// All returns every rule ordered by code.
func (r *Registry) All() []Rule {
	out := make([]Rule, 0, len(r.codes))
	for _, c := range r.codes {
		out = append(out, r.rules[c])
	}
	return out
}

// Lookup resolves a code against the embedded table.
func Lookup(code string) (Rule, error) {
	return defaultRegistry.Lookup(code)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
