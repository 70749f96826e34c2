package web

// Page templates. Each page defines a "content" block rendered inside
// the shared layout.

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Aura</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; color: #222; }
header { background: #1d3557; color: #fff; padding: 0.75rem 1.5rem; display: flex; gap: 1.5rem; align-items: baseline; }
header a { color: #a8dadc; text-decoration: none; }
header a.active { color: #fff; font-weight: 600; }
main { padding: 1.5rem; max-width: 60rem; margin: 0 auto; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.75rem; border-bottom: 1px solid #ddd; }
.kind { font-size: 0.8rem; text-transform: uppercase; color: #666; }
.section { border: 1px solid #ddd; border-radius: 4px; margin-bottom: 1rem; }
.section h3 { margin: 0; padding: 0.5rem 0.75rem; background: #f1faee; font-size: 0.95rem; }
.section div { padding: 0.5rem 0.75rem; overflow-x: auto; }
.muted { color: #888; }
footer { padding: 1rem 1.5rem; color: #888; font-size: 0.8rem; }
</style>
</head>
<body>
<header>
<strong>Aura</strong>
<a href="/sessions"{{if eq .Nav "sessions"}} class="active"{{end}}>Sessions</a>
<a href="/digest"{{if eq .Nav "digest"}} class="active"{{end}}>Digest</a>
<a href="/sizes"{{if eq .Nav "sizes"}} class="active"{{end}}>Storage</a>
</header>
<main>
{{template "content" .}}
</main>
<footer>aura {{.Version}}</footer>
</body>
</html>{{end}}`

const listTemplate = `{{define "content"}}
<h1>Sessions</h1>
{{if .Records}}
<table>
<tr><th>Title</th><th>Kind</th><th>Items</th><th>Size</th><th>Updated</th></tr>
{{range .Records}}
<tr>
<td><a href="/sessions/{{.ID}}">{{.Title}}</a></td>
<td class="kind">{{.Kind}}</td>
<td>{{.ItemCount}}</td>
<td>{{formatSize .SizeBytes}}</td>
<td>{{formatTime .UpdatedAt}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="muted">No sessions cataloged yet.</p>
{{end}}
{{end}}`

const detailTemplate = `{{define "content"}}
<h1>{{.Record.Title}}</h1>
<p class="kind">{{.Record.Kind}} · {{formatSize .Record.SizeBytes}} · created {{formatTime .Record.CreatedAt}}</p>
{{if .Record.Summary}}<p>{{.Record.Summary}}</p>{{end}}
{{range .Rendered}}
<div class="section">
<h3>{{.Name}} <span class="kind">{{.Kind}}</span></h3>
<div>{{.HTML}}</div>
</div>
{{else}}
<p class="muted">Session is empty.</p>
{{end}}
{{end}}`

const digestTemplate = `{{define "content"}}
<h1>Memory digest</h1>
<p class="muted">{{.Digest.Stats.UniqueEntries}} unique of {{.Digest.Stats.TotalEntries}} entries,
{{.Digest.Stats.DuplicateSkipped}} duplicates skipped</p>
{{if .Digest.Memories}}
<table>
<tr><th>#</th><th>Pattern</th><th>Memory</th></tr>
{{range $i, $m := .Digest.Memories}}
<tr><td>{{$i}}</td><td class="kind">{{$m.Pattern}}</td><td>{{$m.Content}}</td></tr>
{{end}}
</table>
{{else}}
<p class="muted">Nothing to digest.</p>
{{end}}
{{end}}`

const sizesTemplate = `{{define "content"}}
<h1>Storage</h1>
<p>{{.Sizes.Tablets}} tablets and {{.Sizes.Capsules}} capsules using {{.Sizes.TotalHuman}} ({{.Sizes.Rating}})</p>
{{if .Sizes.Files}}
<table>
<tr><th>Path</th><th>Kind</th><th>Size</th></tr>
{{range .Sizes.Files}}
<tr><td><a href="/sessions/{{.ID}}">{{.Path}}</a></td><td class="kind">{{.Kind}}</td><td>{{.SizeHuman}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}`

const errorTemplate = `{{define "content"}}
<h1>{{.Code}}</h1>
<p>{{.Message}}</p>
<p><a href="/sessions">Back to sessions</a></p>
{{end}}`
