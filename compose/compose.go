// ABOUTME: Personalized campaign email drafts
// ABOUTME: Fills the {name} placeholder and builds a webmail compose link
package compose

import (
	"net/url"
	"strings"

	"github.com/harperreed/kin/models"
)

// Placeholder is replaced with the recipient's first name.
const Placeholder = "{name}"

// PreviewName stands in for a recipient when previewing a campaign.
const PreviewName = "John Doe"

const gmailComposeBase = "https://mail.google.com/mail/?view=cm&fs=1"

// Draft is a campaign email ready for one recipient.
type Draft struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	HTML       string `json:"html"`
	ComposeURL string `json:"compose_url"`
}

// FirstName returns the first whitespace-separated token of name.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Fill replaces every placeholder with value as is.
func Fill(template, value string) string {
	return strings.ReplaceAll(template, Placeholder, value)
}

// Personalize replaces every placeholder with the first name of name.
func Personalize(template, name string) string {
	return Fill(template, FirstName(name))
}

// escape percent-encodes a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// GmailComposeURL opens a prefilled compose window. The body travels as raw
// Markdown so mail clients or extensions can render it.
func GmailComposeURL(to, subject, body string) string {
	var b strings.Builder
	b.WriteString(gmailComposeBase)
	b.WriteString("&to=")
	b.WriteString(escape(to))
	b.WriteString("&su=")
	b.WriteString(escape(subject))
	b.WriteString("&body=")
	b.WriteString(escape(body))
	return b.String()
}

// NewDraft personalizes a campaign for one recipient. ComposeURL is empty when
// the recipient has no email address.
func NewDraft(c *models.Campaign, r *models.CampaignRecipient) (*Draft, error) {
	d := &Draft{
		To:      r.Email,
		Subject: Personalize(c.SubjectTemplate, r.Name),
		Body:    Personalize(c.BodyTemplate, r.Name),
	}
	return d.finish()
}

// NewPreview fills the templates with PreviewName for the campaign editor.
func NewPreview(c *models.Campaign) (*Draft, error) {
	d := &Draft{
		Subject: Fill(c.SubjectTemplate, PreviewName),
		Body:    Fill(c.BodyTemplate, PreviewName),
	}
	return d.finish()
}

func (d *Draft) finish() (*Draft, error) {
	html, err := RenderMarkdown(d.Body)
	if err != nil {
		return nil, err
	}
	d.HTML = html
	if d.To != "" {
		d.ComposeURL = GmailComposeURL(d.To, d.Subject, d.Body)
	}
	return d, nil
}
