package models

// Role is the semantic role the classifier assigns to one top-level document node.
type Role int

const (
	RoleEmpty   Role = iota // no extractable text and no image
	RoleLead                // top-level heading
	RoleSubLead             // nested heading or an isolated bold run
	RoleBody                // plain text
	RoleImage               // carries an image reference
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleEmpty, RoleLead, RoleSubLead, RoleBody, RoleImage}

func (r Role) String() string {
	switch r {
	case RoleLead:
		return "lead"
	case RoleSubLead:
		return "sub_lead"
	case RoleBody:
		return "body"
	case RoleImage:
		return "image"
	default:
		return "empty"
	}
}
