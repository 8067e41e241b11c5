// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template. Templates are named by file name.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// Static serves the files under static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":        formatDate,
		"money":       formatMoney,
		"join":        strings.Join,
		"statusLabel": statusLabel,
		"deepLink":    chat.DeepLink,
		"chatTitle":   chatTitle,
	}
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	}
	return ""
}

func formatMoney(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("$%d", int64(amount))
	}
	return fmt.Sprintf("$%.2f", amount)
}

func statusLabel(status models.ProjectStatus) string {
	s := strings.ReplaceAll(string(status), "-", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// chatTitle names a chat for viewerID: its group name, or the other
// participants.
func chatTitle(c models.Chat, viewerID string) string {
	if c.Name != "" {
		return c.Name
	}
	var names []string
	for _, p := range c.Participants {
		if p.ID == viewerID {
			continue
		}
		switch {
		case p.FullName != "":
			names = append(names, p.FullName)
		case p.Username != "":
			names = append(names, p.Username)
		}
	}
	if len(names) == 0 {
		return "Conversation"
	}
	return strings.Join(names, ", ")
}
