package notification

import (
	"bytes"
	"text/template"

	"github.com/Behyna/notification-services/internal/errs"
)

// templateData exposes the item as .item next to every context key.
func templateData(item any, context map[string]any) map[string]any {
	data := make(map[string]any, len(context)+1)
	for k, v := range context {
		data[k] = v
	}
	data["item"] = item
	return data
}

func render(name, text string, data map[string]any) (string, error) {
	if text == "" {
		return "", nil
	}

	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", errs.Configuration("template %s: %v", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errs.Configuration("template %s: %v", name, err)
	}

	return buf.String(), nil
}
