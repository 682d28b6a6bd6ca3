// Package locale resolves the region used to format numbers to E.164.
package locale

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

const (
	errInvalidRegion = "invalid network country %q: %w"
	errNotCountry    = "network country %q is not an ISO 3166 country"
)

// localeEnv is the POSIX lookup order for the message locale.
var localeEnv = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// getenv is replaceable in tests.
var getenv = os.Getenv

// Resolver answers the country the device is registered in and the region of
// the configured locale. It satisfies normalize.CountryResolver.
type Resolver struct {
	network string // canonical ISO 3166 alpha-2 or empty
	region  string // region parsed from the locale tag or empty
}

// New builds a Resolver. networkCountry may be empty when no network is
// attached. An empty tag falls back to the POSIX locale environment.
func New(networkCountry, tag string) (*Resolver, error) {
	r := &Resolver{}
	if strings.TrimSpace(networkCountry) != "" {
		cc, err := CanonicalRegion(networkCountry)
		if err != nil {
			return nil, err
		}
		r.network = cc
	}
	if strings.TrimSpace(tag) == "" {
		tag = envLocale()
	}
	r.region, _ = RegionFromLocale(tag)
	return r, nil
}

// NetworkCountryCode returns the network/SIM country when one is configured.
func (r *Resolver) NetworkCountryCode() (string, bool) {
	return r.network, r.network != ""
}

// LocaleRegion returns the locale's region, or "" when the locale names none.
func (r *Resolver) LocaleRegion() string { return r.region }

// CanonicalRegion validates an ISO 3166-1 alpha-2 code and returns it upper-cased.
func CanonicalRegion(code string) (string, error) {
	code = strings.TrimSpace(code)
	reg, err := language.ParseRegion(code)
	if err != nil {
		return "", fmt.Errorf(errInvalidRegion, code, err)
	}
	if !reg.IsCountry() {
		return "", fmt.Errorf(errNotCountry, code)
	}
	return reg.String(), nil
}

// RegionFromLocale extracts the region from a BCP 47 tag or a POSIX locale
// such as "en_US.UTF-8". Only an explicit region counts; "en" alone yields
// false rather than a guessed "US".
func RegionFromLocale(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "C" || tag == "POSIX" {
		return "", false
	}
	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return "", false
	}
	reg, conf := t.Region()
	if conf != language.Exact || !reg.IsCountry() {
		return "", false
	}
	return reg.String(), true
}

func envLocale() string {
	for _, key := range localeEnv {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}
