package notifications

import (
	"bytes"
	"html/template"

	"reclaimit/internal/models"
)

var approvedTmpl = template.Must(template.New("approved").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Good news, {{.Name}}!</h2>
  <p>Your claim for <strong>{{.ItemName}}</strong> has been approved.</p>
  {{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}
  {{if .PickupLocation}}<p>You can collect the item at <strong>{{.PickupLocation}}</strong>. Please bring your campus ID.</p>{{end}}
  <p>ReClaimIt - Campus Lost &amp; Found</p>
</div>`))

var declinedTmpl = template.Must(template.New("declined").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Hello {{.Name}},</h2>
  <p>Your claim for <strong>{{.ItemName}}</strong> was not approved.</p>
  {{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}
  <p>If you believe this was a mistake, please visit the lost &amp; found office with proof of ownership.</p>
  <p>ReClaimIt - Campus Lost &amp; Found</p>
</div>`))

type mailData struct {
	Name           string
	ItemName       string
	Notes          string
	PickupLocation string
}

func renderReviewEmail(user *models.User, item *models.Item, claim *models.Claim, approved bool) (subject, body string, err error) {
	data := mailData{
		Name:     user.Name,
		ItemName: item.ItemName,
		Notes:    claim.AdminNotes,
	}

	var buf bytes.Buffer
	if approved {
		data.PickupLocation = item.PickupLocation
		if err := approvedTmpl.Execute(&buf, data); err != nil {
			return "", "", err
		}
		return "Your claim for \"" + item.ItemName + "\" was approved", buf.String(), nil
	}

	if err := declinedTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return "Update on your claim for \"" + item.ItemName + "\"", buf.String(), nil
}
