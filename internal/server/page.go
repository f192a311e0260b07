package server

import (
	"html/template"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

type pageData struct {
	Query   string
	Results []entity.ProductRecord
	Error   string
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Product Search</title></head>
<body>
<h1>Product Search</h1>
<form method="get" action="/">
  <input type="text" name="q" value="{{.Query}}" placeholder="Enter product meta word (e.g., ghee)">
  <button type="submit">Search</button>
</form>
{{- if .Error}}
<div style="color: red;">Error: {{.Error}}</div>
{{- else if not .Query}}
<div>No query provided.</div>
{{- else if not .Results}}
<div style="color: #666;">No results found for: <strong>{{.Query}}</strong></div>
{{- else}}
<div><strong>Results ({{len .Results}}):</strong></div>
<ul>
{{- range .Results}}
<li>
<strong>{{.ProductName}}</strong> - {{.CompanyName}}<br>
Contact: {{.ContactNumber}} | Website: <a href="{{.Website}}" target="_blank">{{.Website}}</a><br>
Description: {{.Description}}<br>
{{- if .CatalogueLink}}
Catalogue: <a href="{{.CatalogueLink}}" target="_blank">Open Catalogue</a>
{{- end}}
</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))
