package xmlrules

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// skippedElement is the one element the core never indexes: the
// "dsc" (description of subordinate components) section, which can be
// arbitrarily large and carries no fields any rule set targets (§6).
const skippedElement = "dsc"

// frame tracks one open element: its full path from the document root and
// the text accumulated for it so far (including descendant text, so
// nested markup flattens into the ancestor's value).
type frame struct {
	name string
	path []string
	buf  strings.Builder
}

// Extract runs rules against the XML event stream read from r, producing
// {key: [values]} (§6). It returns an error naming any required rule that
// never fired, or a decode error for malformed XML.
func Extract(r io.Reader, rules *RuleSet) (map[string][]string, error) {
	fields := make(map[string][]string)

	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	var stack []*frame
	skipDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode XML token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if name == skippedElement {
				skipDepth = 1
				continue
			}

			var parentPath []string
			if len(stack) > 0 {
				parentPath = stack[len(stack)-1].path
			}
			path := make([]string, len(parentPath)+1)
			copy(path, parentPath)
			path[len(parentPath)] = name
			stack = append(stack, &frame{name: name, path: path})

		case xml.CharData:
			if skipDepth > 0 || len(stack) == 0 {
				continue
			}
			text := string(t)
			for _, f := range stack {
				f.buf.WriteString(text)
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if len(stack) == 0 {
				continue
			}

			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, rule := range rules.byTerminalRules(top.name) {
				if !matchesStack(top.path, rule.Path) {
					continue
				}
				value := strings.TrimSpace(top.buf.String())
				if value == "" {
					continue
				}
				fields[rule.Key] = append(fields[rule.Key], value)
			}
		}
	}

	var missing []string
	for _, rule := range rules.Required() {
		if len(fields[rule.Key]) == 0 {
			missing = append(missing, rule.Key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required metadata fields: %s", strings.Join(missing, ", "))
	}

	return fields, nil
}
