package dto

import "time"

type TemplateConnection struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type TemplateChart struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TemplateSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	ConnectionTypes []string  `json:"connection_types"`
	ChartCount      int       `json:"chart_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	Updated         string    `json:"updated"`
}

type Template struct {
	TemplateSummary
	Connections []TemplateConnection `json:"connections"`
	Charts      []TemplateChart      `json:"charts"`
}
