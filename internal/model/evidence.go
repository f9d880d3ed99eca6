package model

// Evidence is a synthetic citation attached to a claim
type Evidence struct {
	ID             string `json:"id" yaml:"id"`
	Text           string `json:"text" yaml:"text"`
	Source         string `json:"source" yaml:"source"`                 // Display name from the category source table
	URL            string `json:"url" yaml:"url"`                       // Always the table URL for Source
	RelevanceScore int    `json:"relevanceScore" yaml:"relevanceScore"` // 0-100, range bound to the claim verdict
}

// Source is a fixed (display name, URL) pair
type Source struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// AuthorityTier represents the classification of a source's authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Regulators, statistical agencies, official registers
	TierSecondary AuthorityTier = 2 // Standards bodies, disclosure frameworks, academic indexes
	TierTertiary  AuthorityTier = 3 // Commercial data vendors and everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
