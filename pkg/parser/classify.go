package parser

import (
	"fmt"

	"github.com/dtnitsch/doc2draft/models"
)

// HeadingPolicy decides how heading levels fold into the lead/sub-lead tiers.
type HeadingPolicy int

const (
	// PolicyPromote makes a heading a lead unless a strictly stronger heading
	// appeared before it among its siblings.
	PolicyPromote HeadingPolicy = iota
	// PolicyStrict makes only h1 a lead; every weaker heading is a sub-lead.
	PolicyStrict
)

// ParseHeadingPolicy maps the config spelling to a policy.
func ParseHeadingPolicy(s string) (HeadingPolicy, error) {
	switch s {
	case "", "promote":
		return PolicyPromote, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyPromote, fmt.Errorf("unknown heading policy %q", s)
}

func (p HeadingPolicy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "promote"
}

// headingTags lists heading tags from strongest to weakest.
var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// headingLevel returns 1..6 for h1..h6 and 0 otherwise.
func headingLevel(tag string) int {
	for i, h := range headingTags {
		if tag == h {
			return i + 1
		}
	}
	return 0
}

// Classifier assigns roles to document nodes.
type Classifier struct {
	Policy HeadingPolicy
}

// Classify labels node with the default promote policy.
func Classify(node Node) models.Role {
	return Classifier{}.Classify(node)
}

// Classify labels node. The first matching rule wins:
// image, empty, heading, isolated bold, body.
func (c Classifier) Classify(node Node) models.Role {
	if _, ok := node.Image(); ok {
		return models.RoleImage
	}

	if node.Text() == "" {
		return models.RoleEmpty
	}

	if level := headingLevel(node.Tag()); level > 0 {
		return c.headingRole(node, level)
	}

	if node.IsolatedBold() {
		return models.RoleSubLead
	}

	return models.RoleBody
}

func (c Classifier) headingRole(node Node, level int) models.Role {
	if level == 1 {
		return models.RoleLead
	}
	if c.Policy == PolicyStrict {
		return models.RoleSubLead
	}
	if node.HasPrecedingSibling(headingTags[:level-1]...) {
		return models.RoleSubLead
	}
	return models.RoleLead
}
