package permission

import (
	"teamaccess/internal/domain"
	"teamaccess/internal/domain/team"
)

// Field names the part of a member's TeamRole a mutation touches.
type Field string

const (
	FieldRole       Field = "role"
	FieldProjects   Field = "projects"
	FieldCanExport  Field = "can_export"
	FieldMembership Field = "membership"
)

// Patch is a partial TeamRole update. Exactly one concern may be set.
// Projects lists project ids whose access is flipped, not the new set.
// FlipExport inverts the stored export flag.
type Patch struct {
	Role       *team.Role
	Projects   []int64
	CanExport  *bool
	FlipExport bool
}

func RolePatch(r team.Role) Patch { return Patch{Role: &r} }

func ProjectsPatch(ids ...int64) Patch { return Patch{Projects: ids} }

func ExportPatch(canExport bool) Patch { return Patch{CanExport: &canExport} }

func ExportTogglePatch() Patch { return Patch{FlipExport: true} }

func (p Patch) Field() Field {
	switch {
	case p.Role != nil:
		return FieldRole
	case len(p.Projects) > 0:
		return FieldProjects
	case p.CanExport != nil, p.FlipExport:
		return FieldCanExport
	}
	return ""
}

func (p Patch) Validate() error {
	n := 0
	if p.Role != nil {
		n++
		if !p.Role.Valid() {
			return domain.InvalidRole("unknown role " + string(*p.Role))
		}
	}
	if len(p.Projects) > 0 {
		n++
	}
	if p.CanExport != nil {
		n++
	}
	if p.FlipExport {
		n++
	}
	if n != 1 {
		return domain.BadRequest("patch must change exactly one of role, projects, can_export")
	}
	return nil
}

// Apply returns current with the patch applied. current is not modified.
func (p Patch) Apply(current team.TeamRole) team.TeamRole {
	next := current
	switch {
	case p.Role != nil:
		next.Role = *p.Role
	case len(p.Projects) > 0:
		next.Projects = ToggleProjects(current.Projects, p.Projects...)
	case p.CanExport != nil:
		next.CanExport = *p.CanExport
	case p.FlipExport:
		next.CanExport = !current.CanExport
	}
	return next
}

// ToggleProjects flips membership of each id in the set: present ids are
// removed, absent ones appended. The input slice is left untouched.
func ToggleProjects(current []int64, ids ...int64) []int64 {
	out := make([]int64, 0, len(current)+len(ids))
	out = append(out, current...)
	for _, id := range ids {
		idx := -1
		for i, p := range out {
			if p == id {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out = append(out[:idx], out[idx+1:]...)
		} else {
			out = append(out, id)
		}
	}
	return out
}
