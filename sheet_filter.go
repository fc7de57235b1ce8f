package auth

import "github.com/uptrace/bun"

// SheetFilter is the visibility predicate computed from an identity's tier.
// False in ExcludePremium/ExcludeTeacherOnly means the constraint is not
// applied. Level and Subject are the caller's requested filters; they narrow
// the result set but never widen access beyond the tier constraints.
type SheetFilter struct {
	ExcludePremium     bool
	ExcludeTeacherOnly bool
	Level              string
	Subject            string
}

// ResolveSheetFilter computes the catalogue visibility predicate for a user.
// This is the single authoritative place tier logic lives; first match wins:
//
//	parent  + premium    -> hide teacher-only
//	parent  + free       -> hide teacher-only and premium
//	teacher + verified   -> full catalogue
//	teacher + unverified -> hide teacher-only and premium
func ResolveSheetFilter(user *User, level, subject string) SheetFilter {
	filter := SheetFilter{
		Level:   level,
		Subject: subject,
	}

	switch {
	case user.Role == RoleParent && user.IsPremium:
		filter.ExcludeTeacherOnly = true
	case user.Role == RoleTeacher && user.IsVerified:
		// full catalogue
	default:
		filter.ExcludeTeacherOnly = true
		filter.ExcludePremium = true
	}

	return filter
}

// Matches reports whether a sheet is visible under this filter.
func (f SheetFilter) Matches(sheet *Sheet) bool {
	if sheet == nil {
		return false
	}

	if f.ExcludeTeacherOnly && sheet.IsTeacherOnly {
		return false
	}

	if f.ExcludePremium && sheet.IsPremium {
		return false
	}

	if f.Level != "" && sheet.Level != f.Level {
		return false
	}

	if f.Subject != "" && sheet.Subject != f.Subject {
		return false
	}

	return true
}

// ApplyTo translates the predicate into WHERE clauses on a sheet query so
// listing endpoints never re-implement tier logic ad hoc.
func (f SheetFilter) ApplyTo(q *bun.SelectQuery) *bun.SelectQuery {
	if f.ExcludeTeacherOnly {
		q = q.Where("?TableAlias.is_teacher_only = ?", false)
	}

	if f.ExcludePremium {
		q = q.Where("?TableAlias.is_premium = ?", false)
	}

	if f.Level != "" {
		q = q.Where("?TableAlias.level = ?", f.Level)
	}

	if f.Subject != "" {
		q = q.Where("?TableAlias.subject = ?", f.Subject)
	}

	return q
}
