package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"aboutme/internal/profile"
)

// profilePageTemplate renders the minimal server-side profile page. The JSON
// API is the primary surface; this page exists so a profile URL is shareable
// without a client.
var profilePageTemplate = template.Must(template.New("profile").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | About Me</title>
</head>
<body>
{{if .View.IsOwner}}<p><em>You are viewing your own profile{{if not .View.IsPublic}} (currently private){{end}}.</em></p>{{end}}
<h1>{{.Title}}</h1>
<p>@{{.View.Username}}</p>
{{with .View.Data.Identity}}{{if .Bio}}<p>{{.Bio}}</p>{{end}}{{end}}
{{with .View.Data.Location}}{{if .CurrentCity}}<p>{{.CurrentCity}}</p>{{end}}{{end}}
{{with .View.Data.Contact}}
<h2>Contact</h2>
<ul>
{{range $label, $email := .Emails}}<li>{{$label}}: {{$email}}</li>{{end}}
{{range $label, $phone := .Phones}}<li>{{$label}}: {{$phone}}</li>{{end}}
</ul>
{{end}}
{{with .View.Data.Experience}}
<h2>Experience</h2>
<ul>
{{range .}}<li>{{.Role}} at {{.Company}} ({{.StartDate}}{{if .EndDate}} to {{.EndDate}}{{else}} to present{{end}})</li>{{end}}
</ul>
{{end}}
</body>
</html>
`))

type profilePageData struct {
	Title string
	View  *profile.PageView
}

// ProfilePage renders the HTML profile view
// GET /u/{username}
func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	view, err := h.service.FetchPage(r.Context(),
		vars["username"], GetSessionUserID(r), accessInfoFromRequest(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	title := view.Data.FullName()
	if title == "" {
		title = view.Username
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := profilePageTemplate.Execute(w, profilePageData{Title: title, View: view}); err != nil {
		slog.Error("Error rendering profile page", "username", view.Username, "error", err)
	}
}
