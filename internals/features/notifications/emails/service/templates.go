package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Confirmation carries everything shown in the registration email.
type Confirmation struct {
	MembershipID   string
	MembershipType string
	Reference      string
	Amount         float64
	Currency       string
	PaymentStatus  string

	FullName         string
	Email            string
	Phone            string
	AlternativePhone string
	DateOfBirth      string
	Gender           string
	Nationality      string
	IDType           string
	IDNumber         string
	Address          string
	DigitalAddress   string

	EmergencyName         string
	EmergencyRelationship string
	EmergencyPhone        string

	Professional []Detail
}

type Detail struct {
	Label string
	Value string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; color: #0f172a;">
  <h2 style="color: #0d9488;">New Membership Registration</h2>
  <p>A new member registration has been submitted via the website.</p>

  <h3 style="color: #0d9488;">Membership</h3>
  <ul style="list-style: none; padding: 0;">
    <li><strong>Membership ID:</strong> {{.MembershipID}}</li>
    <li><strong>Type:</strong> {{.MembershipType}}</li>
    <li><strong>Reference:</strong> {{.Reference}}</li>
    <li><strong>Amount Paid:</strong> {{.AmountLabel}}</li>
    <li><strong>Payment Status:</strong> {{.PaymentStatus}}</li>
  </ul>

  <h3 style="color: #0d9488;">Applicant</h3>
  <ul style="list-style: none; padding: 0;">
    <li><strong>Name:</strong> {{.FullName}}</li>
    <li><strong>Email:</strong> {{.Email}}</li>
    <li><strong>Phone:</strong> {{.Phone}}</li>
    {{- if .AlternativePhone}}
    <li><strong>Alternate Phone:</strong> {{.AlternativePhone}}</li>
    {{- end}}
    <li><strong>Date of Birth:</strong> {{.DateOfBirth}}</li>
    <li><strong>Gender:</strong> {{.Gender}}</li>
    <li><strong>Nationality:</strong> {{.Nationality}}</li>
    <li><strong>ID Type:</strong> {{.IDType}}</li>
    <li><strong>ID Number:</strong> {{.IDNumber}}</li>
    <li><strong>Address:</strong> {{.Address}}</li>
    {{- if .DigitalAddress}}
    <li><strong>Digital Address:</strong> {{.DigitalAddress}}</li>
    {{- end}}
  </ul>

  <h3 style="color: #0d9488;">Emergency Contact</h3>
  <ul style="list-style: none; padding: 0;">
    <li><strong>Name:</strong> {{or .EmergencyName "N/A"}}</li>
    <li><strong>Relationship:</strong> {{or .EmergencyRelationship "N/A"}}</li>
    <li><strong>Phone:</strong> {{or .EmergencyPhone "N/A"}}</li>
  </ul>
  {{- if .Professional}}

  <h3 style="color: #0d9488;">Professional / Additional Details</h3>
  <ul style="list-style: none; padding: 0;">
    {{- range .Professional}}
    <li>{{.Label}}: {{.Value}}</li>
    {{- end}}
  </ul>
  {{- end}}

  <p style="margin-top: 24px;">Please log into the admin dashboard to review the registration.</p>
</div>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<p>Hello {{.Name}},</p>
<p>You requested a password reset. Click the link below to set a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in 15 minutes. If you did not request this, please ignore this email.</p>
`))

func (c Confirmation) AmountLabel() string {
	cur := c.Currency
	if cur == "" || cur == "GHS" {
		cur = "GH₵"
	} else {
		cur += " "
	}
	return fmt.Sprintf("%s%.2f", cur, c.Amount)
}

func (c Confirmation) Subject() string {
	return fmt.Sprintf("New %s registration - %s", c.MembershipType, c.MembershipID)
}

func RenderConfirmation(c Confirmation) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderReset(name, link string) (string, error) {
	var buf bytes.Buffer
	err := resetTmpl.Execute(&buf, struct{ Name, Link string }{name, link})
	return buf.String(), err
}

// ProfessionalDetails flattens a professional-info blob into sorted label/value
// pairs. Empty values are skipped; lists are comma joined.
func ProfessionalDetails(raw []byte) []Detail {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Detail, 0, len(keys))
	for _, k := range keys {
		v := detailValue(m[k])
		if v == "" {
			continue
		}
		out = append(out, Detail{Label: strings.ReplaceAll(k, "_", " "), Value: v})
	}
	return out
}

func detailValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := detailValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := detailValue(t[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " / ")
	default:
		return fmt.Sprint(t)
	}
}
