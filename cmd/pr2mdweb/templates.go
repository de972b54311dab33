package main

import (
	"fmt"
	"html/template"

	webassets "github.com/johnqtcg/pr2md/web"
)

func loadTemplate() (*template.Template, error) {
	tmpl, err := template.ParseFS(webassets.FS, "templates/index.html")
	if err == nil {
		return tmpl, nil
	}

	fallback, fallbackErr := template.New("index").Parse(defaultIndexTemplate)
	if fallbackErr != nil {
		return nil, fmt.Errorf("parse embedded template: %w", err)
	}
	return fallback, nil
}

const defaultIndexTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>pr2md Web</title>
</head>
<body>
  <h1>pr2md Web</h1>
  <form method="post" action="/convert">
    <input name="ref" type="text" required value="{{ .Ref }}">
    <button type="submit">Convert</button>
  </form>
  {{ if .Error }}<p>{{ .Error }}</p>{{ end }}
  {{ if .Markdown }}<pre>{{ .Markdown }}</pre>{{ end }}
</body>
</html>`
