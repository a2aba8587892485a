// Package xmlrules implements the rule-based XML metadata extractor
// contract (§6): a rule set of {key, path, required} fires against an
// XML event stream whenever the tag stack ends in the rule's path
// segments, producing {key: [values]}.
package xmlrules

// Rule matches one metadata field. Path is the sequence of element names
// (outermost first) the tag stack must end with for the rule to fire;
// e.g. {"repository", "corpname"} fires inside
// <repository><corpname>...</corpname></repository>, however deeply
// nested that pair appears.
type Rule struct {
	Key      string
	Path     []string
	Required bool
}

// RuleSet is an ordered collection of rules indexed by their path's
// terminal (last) segment, so matching a closing tag only has to check
// the rules whose path could possibly end there (grounded on
// original_source's rules.rs `by_terminal` index).
type RuleSet struct {
	rules      []Rule
	byTerminal map[string][]int
}

// NewRuleSet builds a RuleSet from an explicit rule list.
func NewRuleSet(rules []Rule) *RuleSet {
	rs := &RuleSet{
		rules:      rules,
		byTerminal: make(map[string][]int, len(rules)),
	}
	for i, r := range rules {
		if len(r.Path) == 0 {
			continue
		}
		terminal := r.Path[len(r.Path)-1]
		rs.byTerminal[terminal] = append(rs.byTerminal[terminal], i)
	}
	return rs
}

// byTerminalRules returns the rules whose path ends with terminal.
func (rs *RuleSet) byTerminalRules(terminal string) []Rule {
	idxs := rs.byTerminal[terminal]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, rs.rules[i])
	}
	return out
}

// Required returns every rule marked required.
func (rs *RuleSet) Required() []Rule {
	var out []Rule
	for _, r := range rs.rules {
		if r.Required {
			out = append(out, r)
		}
	}
	return out
}

// matchesStack reports whether the current tag stack ends with path, i.e.
// path is a suffix of stack.
func matchesStack(stack []string, path []string) bool {
	if len(path) > len(stack) {
		return false
	}
	offset := len(stack) - len(path)
	for i, seg := range path {
		if stack[offset+i] != seg {
			return false
		}
	}
	return true
}
