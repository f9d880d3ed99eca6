package score

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/claimaudit/internal/model"
)

// DefaultPrimaryDomains are official registers and agencies
var DefaultPrimaryDomains = []string{
	"sec.gov",
	"federalregister.gov",
	"europa.eu",
	"nih.gov",
	"nsf.gov",
}

// DefaultSecondaryDomains are standards bodies, disclosure frameworks and
// academic indexes
var DefaultSecondaryDomains = []string{
	"iso.org",
	"globalreporting.org",
	"sasb.org",
	"cdp.net",
	"unglobalcompact.org",
	"scholar.google.com",
	"scopus.com",
	"webofscience.com",
}

// AuthorityClassifier classifies evidence URLs into authority tiers
type AuthorityClassifier struct {
	primary   []string
	secondary []string
}

// NewAuthorityClassifier creates a classifier. Nil lists use the defaults.
func NewAuthorityClassifier(primary, secondary []string) *AuthorityClassifier {
	if primary == nil {
		primary = DefaultPrimaryDomains
	}
	if secondary == nil {
		secondary = DefaultSecondaryDomains
	}
	return &AuthorityClassifier{primary: primary, secondary: secondary}
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	if matchesDomain(host, a.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondary) {
		return model.TierSecondary
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// matchesDomain reports whether host is one of domains or a subdomain of one
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// AuthorityBreakdown counts the distinct evidence URLs of a claim set per tier
func (a *AuthorityClassifier) AuthorityBreakdown(claims []model.Claim) map[model.AuthorityTier]int {
	counts := make(map[model.AuthorityTier]int)
	seen := make(map[string]bool)
	for _, c := range claims {
		for _, e := range c.Evidence {
			if seen[e.URL] {
				continue
			}
			seen[e.URL] = true
			counts[a.Classify(e.URL)]++
		}
	}
	return counts
}

// FormatBreakdown renders a breakdown as "2 primary, 1 secondary, 0 tertiary"
func FormatBreakdown(counts map[model.AuthorityTier]int) string {
	s := fmt.Sprintf("%d primary, %d secondary, %d tertiary",
		counts[model.TierPrimary], counts[model.TierSecondary], counts[model.TierTertiary])
	if n := counts[model.TierUnknown]; n > 0 {
		s += fmt.Sprintf(", %d unclassified", n)
	}
	return s
}
