package email

// PreviewData holds sample values for every template, keyed by template
// name and then by template variable.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"Name":     "位高權上者",
		"Username": "admin@example.io",
	},
}

// Preview renders a template with its sample data.
func Preview(name Template) (string, error) {
	return Render(name, PreviewData[name])
}
