// Package identity parses Warcraft Logs character profile URLs into a
// normalized identity, and builds profile URLs back from one.
package identity

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"wcl-enricher/internal/domain"
)

const (
	Host            = "www.warcraftlogs.com"
	bareHost        = "warcraftlogs.com"
	resourceSegment = "character"
	idSegment       = "id"

	minNameLength = 2
	maxNameLength = 12
)

var realmPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func invalid(format string, args ...any) *domain.Error {
	return domain.NewError(domain.KindInvalidInput, fmt.Sprintf(format, args...))
}

// Parse validates a profile URL of the form
//
//	https://www.warcraftlogs.com/character/{region}/{realm}/{name}
//	https://www.warcraftlogs.com/character/id/{id}
//
// and returns the normalized reference.
func Parse(raw string) (domain.RawIdentityReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.RawIdentityReference{}, invalid("warcraft logs url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return domain.RawIdentityReference{}, invalid("warcraft logs url is malformed")
	}

	host := strings.ToLower(u.Hostname())
	if host != Host && host != bareHost {
		return domain.RawIdentityReference{}, invalid("url must point to %s", Host)
	}

	segments := splitPath(u.Path)
	if len(segments) == 0 || strings.ToLower(segments[0]) != resourceSegment {
		return domain.RawIdentityReference{}, invalid("url must be a warcraft logs character page")
	}

	if len(segments) >= 2 && strings.ToLower(segments[1]) == idSegment {
		return parseID(segments)
	}
	return parseSlug(segments)
}

func parseID(segments []string) (domain.RawIdentityReference, error) {
	if len(segments) < 3 {
		return domain.RawIdentityReference{}, invalid("character id is missing")
	}
	id := segments[2]
	n, err := strconv.ParseUint(id, 10, 63)
	if err != nil || n == 0 {
		return domain.RawIdentityReference{}, invalid("character id %q is not a positive number", id)
	}
	return domain.RawIdentityReference{NumericID: strconv.FormatUint(n, 10)}, nil
}

func parseSlug(segments []string) (domain.RawIdentityReference, error) {
	if len(segments) < 4 {
		return domain.RawIdentityReference{}, invalid("url must contain region, realm and character name")
	}
	ident, err := Normalize(segments[1], segments[2], segments[3])
	if err != nil {
		return domain.RawIdentityReference{}, err
	}
	return domain.RawIdentityReference{Slug: &ident}, nil
}

// Normalize validates and normalizes a region/realm/name triple.
func Normalize(region, realm, name string) (domain.ResolvedIdentity, error) {
	r := NormalizeRegion(region)
	if !r.Valid() {
		return domain.ResolvedIdentity{}, invalid("region %q is not one of US, EU, KR, TW, CN", region)
	}

	slug := NormalizeRealm(realm)
	if !realmPattern.MatchString(slug) {
		return domain.ResolvedIdentity{}, invalid("realm %q may only contain letters, digits and hyphens", realm)
	}

	// checked on the normalized form so the result always parses again
	n := NormalizeName(name)
	length := utf8.RuneCountInString(n)
	if length < minNameLength || length > maxNameLength {
		return domain.ResolvedIdentity{}, invalid("character name must be %d-%d letters", minNameLength, maxNameLength)
	}
	for _, c := range n {
		if !unicode.IsLetter(c) {
			return domain.ResolvedIdentity{}, invalid("character name %q may only contain letters", name)
		}
	}

	return domain.ResolvedIdentity{
		Region:        r,
		Realm:         slug,
		CharacterName: n,
	}, nil
}

func NormalizeRegion(region string) domain.Region {
	return domain.Region(strings.ToUpper(strings.TrimSpace(region)))
}

func NormalizeRealm(realm string) string {
	return strings.ToLower(strings.TrimSpace(realm))
}

// NormalizeName lower-cases the name, then upper-cases the first letter.
// Folding the first letter through lower case keeps the result stable when
// it comes back from a lower-cased profile URL ("İ" becomes "I").
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + name[size:]
}

// SlugifyRealm turns an upstream realm display name ("Area 52", "Mal'Ganis")
// into its slug ("area-52", "malganis").
func SlugifyRealm(display string) string {
	var b strings.Builder
	lastHyphen := true
	for _, c := range strings.ToLower(strings.TrimSpace(display)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		case c == ' ' || c == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL is the inverse of Parse for the slug form.
func BuildURL(region domain.Region, realm, name string) string {
	u := url.URL{
		Scheme: "https",
		Host:   Host,
		Path: "/" + strings.Join([]string{
			resourceSegment,
			strings.ToLower(string(region)),
			NormalizeRealm(realm),
			strings.ToLower(strings.TrimSpace(name)),
		}, "/"),
	}
	return u.String()
}

func BuildIDURL(id string) string {
	u := url.URL{Scheme: "https", Host: Host, Path: "/" + resourceSegment + "/" + idSegment + "/" + id}
	return u.String()
}

func splitPath(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
