package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// outletProfile is the on-disk shape of an outlet profile. Fields left out
// of the file keep their environment values.
type outletProfile struct {
	Name           *string `yaml:"name"`
	OpeningBalance *string `yaml:"openingBalance"`
	Currency       *string `yaml:"currency"`
	TimeZone       *string `yaml:"timeZone"`
	Notes          []int   `yaml:"notes"`
}

// LoadProfile overrides outlet settings with the YAML file at path.
//
//	name: Koramangala
//	openingBalance: "5100"
//	timeZone: Asia/Kolkata
//	notes: [500, 200, 100, 50, 20, 10]
func (c *OutletConfig) LoadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read outlet profile: %w", err)
	}
	return c.applyProfile(data)
}

func (c *OutletConfig) applyProfile(data []byte) error {
	var p outletProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse outlet profile: %w", err)
	}

	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.OpeningBalance != nil {
		d, err := decimal.NewFromString(*p.OpeningBalance)
		if err != nil {
			return fmt.Errorf("outlet profile openingBalance %q: %w", *p.OpeningBalance, err)
		}
		c.OpeningBalance = d
	}
	if p.Currency != nil {
		c.Currency = *p.Currency
	}
	if p.TimeZone != nil {
		c.TimeZone = *p.TimeZone
	}
	if len(p.Notes) > 0 {
		c.Notes = p.Notes
	}
	return nil
}

func (c *OutletConfig) validate() []string {
	var errs []string

	if c.OpeningBalance.IsNegative() {
		errs = append(errs, "OUTLET_OPENING_BALANCE must be non-negative")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Sprintf("OUTLET_TIMEZONE (%q) is not a known time zone", c.TimeZone))
	}
	if len(c.Notes) == 0 {
		errs = append(errs, "OUTLET_NOTES must list at least one note")
	}
	seen := make(map[int]bool, len(c.Notes))
	for _, n := range c.Notes {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("OUTLET_NOTES contains non-positive note %d", n))
		}
		if seen[n] {
			errs = append(errs, fmt.Sprintf("OUTLET_NOTES lists note %d twice", n))
		}
		seen[n] = true
	}
	return errs
}
