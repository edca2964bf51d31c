// Package notify groups newly disconnected accounts and delivers one message per group.
package notify

import (
	"fmt"
	"strings"
)

// Rule routes accounts with a tag containing any of Substrings to Group
type Rule struct {
	Group      string
	Substrings []string
}

// ParseRules parses entries of the form GROUP=sub1|sub2, keeping their order
func ParseRules(entries []string) ([]Rule, error) {
	var rules []Rule
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		group, subs, ok := strings.Cut(entry, "=")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			return nil, fmt.Errorf("invalid group rule %q: expected GROUP=substring[|substring...]", entry)
		}

		rule := Rule{Group: group}
		for _, sub := range strings.Split(subs, "|") {
			if sub = strings.TrimSpace(sub); sub != "" {
				rule.Substrings = append(rule.Substrings, sub)
			}
		}
		if len(rule.Substrings) == 0 {
			return nil, fmt.Errorf("invalid group rule %q: no substrings", entry)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Classifier assigns a tag list to exactly one group
type Classifier struct {
	rules        []Rule
	defaultGroup string
}

// NewClassifier creates a classifier; substrings are compared case-insensitively
func NewClassifier(rules []Rule, defaultGroup string) *Classifier {
	lowered := make([]Rule, len(rules))
	for i, r := range rules {
		lowered[i] = Rule{Group: r.Group, Substrings: make([]string, len(r.Substrings))}
		for j, sub := range r.Substrings {
			lowered[i].Substrings[j] = strings.ToLower(sub)
		}
	}
	return &Classifier{rules: lowered, defaultGroup: defaultGroup}
}

// Classify returns the group of the first rule with a substring contained in
// any tag, or the default group.
func (c *Classifier) Classify(tags []string) string {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}

	for _, rule := range c.rules {
		for _, sub := range rule.Substrings {
			for _, tag := range lowered {
				if strings.Contains(tag, sub) {
					return rule.Group
				}
			}
		}
	}
	return c.defaultGroup
}

// Groups returns every group name in rule order followed by the default group
func (c *Classifier) Groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.rules {
		if !seen[r.Group] {
			seen[r.Group] = true
			out = append(out, r.Group)
		}
	}
	if !seen[c.defaultGroup] {
		out = append(out, c.defaultGroup)
	}
	return out
}
