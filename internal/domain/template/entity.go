package template

import "time"

type Connection struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Chart struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Model is the snapshot of a project a template recreates.
type Model struct {
	Connections []Connection `json:"Connections"`
	Charts      []Chart      `json:"Charts"`
}

type Template struct {
	ID        int64
	TeamID    int64
	Name      string
	Model     Model
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConnectionTypes lists the distinct connection types in first-seen order.
func (t Template) ConnectionTypes() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, c := range t.Model.Connections {
		if _, ok := seen[c.Type]; ok {
			continue
		}
		seen[c.Type] = struct{}{}
		out = append(out, c.Type)
	}
	return out
}
