package models

import "strings"

// Paragraph is one node of the output tree. Top-level paragraphs are opened by a
// lead, sub-paragraphs by a sub-lead. Sub-paragraphs never hold subs of their own.
type Paragraph struct {
	Lead   string       `yaml:"lead" json:"lead"`
	Body   []string     `yaml:"body,omitempty" json:"body,omitempty"`
	Subs   []*Paragraph `yaml:"subs,omitempty" json:"subs,omitempty"`
	ImgURL string       `yaml:"img_url,omitempty" json:"img_url,omitempty"`
}

// leadSeparators are the comma family a lead may be split on.
const leadSeparators = ",，"

// Leads splits Lead on half-width and full-width commas.
func (p *Paragraph) Leads() []string {
	fields := strings.FieldsFunc(p.Lead, func(r rune) bool {
		return strings.ContainsRune(leadSeparators, r)
	})

	leads := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			leads = append(leads, f)
		}
	}
	return leads
}

// ImgSrc returns the image URL attached to this paragraph, if any.
func (p *Paragraph) ImgSrc() string {
	return p.ImgURL
}

// SetImage attaches url unless the paragraph already has an image.
// It reports whether the url was stored.
func (p *Paragraph) SetImage(url string) bool {
	if p.ImgURL != "" || url == "" {
		return false
	}
	p.ImgURL = url
	return true
}

// AddBody appends one line of body text.
func (p *Paragraph) AddBody(text string) {
	p.Body = append(p.Body, text)
}

// AddSub appends a new sub-paragraph with the given lead and returns it.
func (p *Paragraph) AddSub(lead string) *Paragraph {
	sub := &Paragraph{Lead: lead}
	p.Subs = append(p.Subs, sub)
	return sub
}
