package email

import (
	"embed"
	"html/template"
)

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateContactNotification corresponds to templates/contact_notification.html
	TemplateContactNotification Template = "contact_notification"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
