package dashboard

import "sort"

// Permission names a capability a role may hold.
type Permission string

const (
	PermViewDashboard  Permission = "dashboard.view"
	PermViewFeedback   Permission = "feedback.view"
	PermViewRegional   Permission = "regional.view"
	PermViewComplaints Permission = "complaints.view"
	PermExport         Permission = "data.export"
	PermUseAgent       Permission = "agent.use"
	PermManageUsers    Permission = "users.manage"
)

// MenuItem is a navigation entry guarded by permissions. A viewer needs every
// permission listed in Requires.
type MenuItem struct {
	Code           string            `json:"code" yaml:"code"`
	Label          string            `json:"label" yaml:"label"`
	LabelLocalized map[string]string `json:"-" yaml:"label_localized,omitempty"`
	Route          string            `json:"route" yaml:"route"`
	Icon           string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Position       int               `json:"position" yaml:"position"`
	Requires       []Permission      `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// RolePolicy grants permissions per role.
type RolePolicy map[string][]Permission

// Allows reports whether any of the viewer's roles holds perm.
func (p RolePolicy) Allows(viewer ViewerContext, perm Permission) bool {
	for _, role := range viewer.Roles {
		for _, granted := range p[role] {
			if granted == perm {
				return true
			}
		}
	}
	return false
}

// AllowsAll reports whether the viewer holds every permission in perms.
func (p RolePolicy) AllowsAll(viewer ViewerContext, perms []Permission) bool {
	for _, perm := range perms {
		if !p.Allows(viewer, perm) {
			return false
		}
	}
	return true
}

// VisibleMenu filters items down to those the viewer may see, ordered by
// Position, with labels resolved for the viewer's locale.
func VisibleMenu(items []MenuItem, viewer ViewerContext, policy RolePolicy) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if policy.AllowsAll(viewer, item.Requires) {
			item.Label = item.LabelFor(viewer.Locale)
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// DefaultMenu returns the dashboard's navigation entries.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Code: "dashboard", Label: "ภาพรวม", LabelLocalized: map[string]string{"en": "Overview"}, Route: "/", Icon: "home", Position: 0, Requires: []Permission{PermViewDashboard}},
		{Code: "feedback", Label: "ความคิดเห็นลูกค้า", LabelLocalized: map[string]string{"en": "Customer feedback"}, Route: "/feedback", Icon: "message-circle", Position: 10, Requires: []Permission{PermViewFeedback}},
		{Code: "regional", Label: "รายภาค", LabelLocalized: map[string]string{"en": "Regions"}, Route: "/regional", Icon: "map", Position: 20, Requires: []Permission{PermViewRegional}},
		{Code: "complaints", Label: "ข้อร้องเรียน", LabelLocalized: map[string]string{"en": "Complaints"}, Route: "/complaints", Icon: "alert-triangle", Position: 30, Requires: []Permission{PermViewComplaints}},
		{Code: "export", Label: "ส่งออกข้อมูล", LabelLocalized: map[string]string{"en": "Export"}, Route: "/export", Icon: "download", Position: 40, Requires: []Permission{PermExport}},
		{Code: "agent", Label: "AI Agent", Route: "/agent", Icon: "bot", Position: 50, Requires: []Permission{PermUseAgent}},
		{Code: "users", Label: "จัดการผู้ใช้", LabelLocalized: map[string]string{"en": "Users"}, Route: "/users", Icon: "users", Position: 90, Requires: []Permission{PermManageUsers}},
	}
}

// DefaultRolePolicy maps the built-in roles to permissions.
func DefaultRolePolicy() RolePolicy {
	return RolePolicy{
		"admin": {
			PermViewDashboard, PermViewFeedback, PermViewRegional, PermViewComplaints,
			PermExport, PermUseAgent, PermManageUsers,
		},
		"executive": {
			PermViewDashboard, PermViewFeedback, PermViewRegional, PermViewComplaints,
			PermExport, PermUseAgent,
		},
		"regional_manager": {
			PermViewDashboard, PermViewFeedback, PermViewRegional, PermViewComplaints, PermExport,
		},
		"branch_staff": {
			PermViewDashboard, PermViewFeedback, PermViewComplaints,
		},
	}
}
