package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/taskdesk/models"
	"github.com/taskdesk/services"
	"gorm.io/datatypes"
)

type templateData struct {
	Recipient models.User
	Project   *models.Project
	Task      *models.Task
	Projects  []models.Project
}

type eventTemplate struct {
	subject string
	body    string
}

var templateFuncs = map[string]interface{}{
	"date": func(d datatypes.Date) string {
		return time.Time(d).Format("2006-01-02")
	},
}

var eventTemplates = map[services.EventType]eventTemplate{
	services.EventProjectAssigned: {
		subject: `You are now managing "{{.Project.Title}}"`,
		body: `Hello {{.Recipient.Name}},

You have been assigned as manager of the project "{{.Project.Title}}".
It is due on {{date .Project.DueDate}}.`,
	},
	services.EventTaskAssigned: {
		subject: `New task: {{.Task.Title}}`,
		body: `Hello {{.Recipient.Name}},

You have been assigned the task "{{.Task.Title}}"{{if .Project}} in project "{{.Project.Title}}"{{end}}.`,
	},
	services.EventProjectDueSoon: {
		subject: `"{{.Project.Title}}" is due on {{date .Project.DueDate}}`,
		body: `Hello {{.Recipient.Name}},

The project "{{.Project.Title}}" you manage is due on {{date .Project.DueDate}}.`,
	},
	services.EventProjectExpired: {
		subject: `"{{.Project.Title}}" has expired`,
		body: `Hello {{.Recipient.Name}},

The project "{{.Project.Title}}" passed its due date ({{date .Project.DueDate}}) and is now expired.`,
	},
	services.EventExpirationReport: {
		subject: `{{len .Projects}} project(s) expired`,
		body: `Hello {{.Recipient.Name}},

The following projects passed their due date and are now expired:
{{range .Projects}}
- {{.Title}} (due {{date .DueDate}})
{{- end}}`,
	},
}

// Render builds the mail for event addressed to recipient
func Render(recipient models.User, event services.Event) (Message, error) {
	tpl, ok := eventTemplates[event.Type]
	if !ok {
		return Message{}, fmt.Errorf("no template for event %q", event.Type)
	}

	data := templateData{
		Recipient: recipient,
		Project:   event.Project,
		Task:      event.Task,
		Projects:  event.Projects,
	}

	subject, err := renderText("subject", tpl.subject, data)
	if err != nil {
		return Message{}, err
	}
	text, err := renderText("body", tpl.body, data)
	if err != nil {
		return Message{}, err
	}
	html, err := renderHTML(tpl.body, data)
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      recipient.Email,
		Subject: strings.TrimSpace(subject),
		Text:    text,
		HTML:    html,
	}, nil
}

func renderText(name, src string, data templateData) (string, error) {
	t, err := texttemplate.New(name).Funcs(templateFuncs).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderHTML escapes the body and keeps its line breaks
func renderHTML(src string, data templateData) (string, error) {
	t, err := htmltemplate.New("html").Funcs(templateFuncs).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return `<div style="font-family: sans-serif; line-height: 1.5;">` +
		strings.ReplaceAll(buf.String(), "\n", "<br />\n") +
		`</div>`, nil
}
