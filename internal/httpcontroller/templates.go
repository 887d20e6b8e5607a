package httpcontroller

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

//go:embed views/*.html
var viewsFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded stylesheet and script.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData is the data of the dashboard template.
type PageData struct {
	Title  string
	View   *View
	Plan   MapPlan
	Inline bool // embed stylesheet and script instead of linking them
	Style  template.CSS
	Script template.JS
}

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded views.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("").Funcs(templateFunctions()).ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			Component("httpcontroller").
			Context("operation", "parse_templates").
			Build()
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// RenderPage writes the full dashboard page for v. With inline set the page
// needs no other assets from this server.
func (t *TemplateRenderer) RenderPage(w io.Writer, v *View, inline bool) error {
	data := PageData{Title: pageTitle(v), View: v, Plan: v.MapPlan(), Inline: inline}
	if inline {
		style, err := fs.ReadFile(staticFS, "static/style.css")
		if err != nil {
			return errors.FileError(err, "static/style.css", 0)
		}
		script, err := fs.ReadFile(staticFS, "static/app.js")
		if err != nil {
			return errors.FileError(err, "static/app.js", 0)
		}
		data.Style = template.CSS(style)  //nolint:gosec // embedded asset
		data.Script = template.JS(script) //nolint:gosec // embedded asset
	}
	return t.templates.ExecuteTemplate(w, "index.html", data)
}

func pageTitle(v *View) string {
	if name := v.Page.Header.RegionName; name != "" {
		return "Rare Bird Sightings in " + name
	}
	return "Rare Bird Sightings"
}

// templateFunctions returns a map of functions that can be used in templates
func templateFunctions() template.FuncMap {
	title := cases.Title(language.English)
	return template.FuncMap{
		"sortLabel": func(dir sightings.Direction) string {
			if dir == sightings.Ascending {
				return title.String("ascending")
			}
			return title.String("descending")
		},
		"ariaSort": func(class string) string {
			switch class {
			case "sort-asc":
				return "ascending"
			case "sort-desc":
				return "descending"
			default:
				return "none"
			}
		},
		"columnLabel": columnLabel,
	}
}

// columnLabel names a sort column for people.
func columnLabel(col sightings.Column) string {
	for _, c := range tableColumns {
		if c.key == col {
			return c.label
		}
	}
	if col == sightings.ColumnScientificName {
		return "Scientific Name"
	}
	return cases.Title(language.English).String(string(col))
}
