package models

// Section is one of the independently refreshed content categories.
type Section string

const (
	SectionAINews      Section = "ai-news"
	SectionStartupNews Section = "startup-news"
	SectionCryptoNews  Section = "crypto-news"
	SectionAITools     Section = "ai-tools"
	SectionCryptoData  Section = "crypto-data"
	SectionCreative    Section = "creative-content"
)

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{
		SectionAINews,
		SectionStartupNews,
		SectionCryptoNews,
		SectionAITools,
		SectionCryptoData,
		SectionCreative,
	}
}

// Valid reports whether s names a known section.
func (s Section) Valid() bool {
	_, ok := s.Canonical()
	return ok
}

// Canonical returns the declared constant equal to s. Request parameters may
// borrow a reused buffer, so values that outlive a request are keyed by it.
func (s Section) Canonical() (Section, bool) {
	for _, known := range Sections() {
		if s == known {
			return known, true
		}
	}
	return "", false
}

// Label is the human readable name used in saved items and error messages.
func (s Section) Label() string {
	switch s {
	case SectionAINews:
		return "AI news"
	case SectionStartupNews:
		return "startup news"
	case SectionCryptoNews:
		return "crypto news"
	case SectionAITools:
		return "AI tools"
	case SectionCryptoData:
		return "crypto data"
	case SectionCreative:
		return "creative content"
	}
	return string(s)
}
