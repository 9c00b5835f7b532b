package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teamaccess/internal/domain"
	"teamaccess/internal/domain/template"
)

type TemplateRepository struct {
	store
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{store{db: db}}
}

func scanTemplate(row rowScanner) (template.Template, error) {
	var (
		t     template.Template
		model []byte
	)
	if err := row.Scan(&t.ID, &t.TeamID, &t.Name, &model, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return template.Template{}, err
	}
	if len(model) > 0 {
		if err := json.Unmarshal(model, &t.Model); err != nil {
			return template.Template{}, fmt.Errorf("decode template model: %w", err)
		}
	}
	return t, nil
}

func (r *TemplateRepository) ListByTeam(ctx context.Context, teamID int64) ([]template.Template, error) {
	rows, err := r.query(ctx,
		`SELECT id, team_id, name, model, created_at, updated_at
		   FROM templates
		  WHERE team_id = $1
		  ORDER BY updated_at DESC, id`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []template.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TemplateRepository) Get(ctx context.Context, teamID, templateID int64) (template.Template, error) {
	t, err := scanTemplate(r.queryRow(ctx,
		`SELECT id, team_id, name, model, created_at, updated_at
		   FROM templates
		  WHERE team_id = $1 AND id = $2`,
		teamID, templateID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return template.Template{}, domain.NotFound("template not found")
	}
	return t, err
}

func (r *TemplateRepository) Delete(ctx context.Context, teamID, templateID int64) error {
	res, err := r.exec(ctx,
		`DELETE FROM templates WHERE team_id = $1 AND id = $2`,
		teamID, templateID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("template not found")
	}
	return nil
}
