package xmlrules

import "fmt"

// eadRuleSet extracts the fields an EAD (Encoded Archival Description)
// finding aid's <did> block carries — title, unit id, creator, date, and
// the owning repository name the index/purge phases filter by (§4.5.1).
func eadRuleSet() *RuleSet {
	return NewRuleSet([]Rule{
		{Key: "title", Path: []string{"unittitle"}, Required: true},
		{Key: "unit_id", Path: []string{"unitid"}, Required: true},
		{Key: "creator", Path: []string{"origination", "persname"}},
		{Key: "date", Path: []string{"unitdate"}},
		{Key: "repository", Path: []string{"repository", "corpname"}, Required: true},
		{Key: "extent", Path: []string{"physdesc", "extent"}},
		{Key: "abstract", Path: []string{"abstract"}},
	})
}

// RuleSetFor returns the rule set for a given OAI-PMH metadataPrefix.
// Grounded on original_source's rules.rs, which keys its CSV-loaded rule
// table by metadata prefix.
func RuleSetFor(metadataPrefix string) (*RuleSet, error) {
	switch metadataPrefix {
	case "ead", "oai_ead":
		return eadRuleSet(), nil
	default:
		return nil, fmt.Errorf("no extraction rules configured for metadata prefix %q", metadataPrefix)
	}
}
