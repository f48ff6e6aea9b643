// Package view renders the HTML pages of the application.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/openkcm/twitch-login/internal/session"
)

//go:embed templates/*.html
var templates embed.FS

// Renderer renders the landing page. It is safe for concurrent use.
type Renderer struct {
	title     string
	anonymous *template.Template
	profile   *template.Template
}

type anonymousPage struct {
	Title     string
	LoginPath string
}

type profilePage struct {
	Title string
	Rows  []row
}

type row struct {
	Label string
	Value string
}

func NewRenderer(title string) (*Renderer, error) {
	anonymous, err := template.ParseFS(templates, "templates/anonymous.html")
	if err != nil {
		return nil, fmt.Errorf("parsing anonymous template: %w", err)
	}

	profile, err := template.ParseFS(templates, "templates/profile.html")
	if err != nil {
		return nil, fmt.Errorf("parsing profile template: %w", err)
	}

	return &Renderer{
		title:     title,
		anonymous: anonymous,
		profile:   profile,
	}, nil
}

// Landing writes the profile table, or a link to loginPath if profile is nil.
// The output depends only on the arguments.
func (r *Renderer) Landing(w io.Writer, profile *session.AuthenticatedProfile, loginPath string) error {
	var buf bytes.Buffer

	var err error
	if profile == nil {
		err = r.anonymous.Execute(&buf, anonymousPage{Title: r.title, LoginPath: loginPath})
	} else {
		err = r.profile.Execute(&buf, profilePage{
			Title: r.title,
			Rows: []row{
				{Label: "Access Token", Value: profile.AccessToken},
				{Label: "Refresh Token", Value: profile.RefreshToken},
				{Label: "Display Name", Value: profile.Field("display_name")},
				{Label: "Bio", Value: profile.Field("bio")},
				{Label: "Image", Value: profile.Field("logo")},
			},
		})
	}
	if err != nil {
		return fmt.Errorf("executing landing template: %w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing landing page: %w", err)
	}

	return nil
}
