// Package access maps roles to features and routes through static typed
// tables. There is no pattern compilation at runtime; parametrized routes
// are an explicit variant matched by prefix.
package access

import "strings"

// Role is the coarse permission role attached to a profile.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleViewer  Role = "viewer"
)

// ParseRole normalizes a stored role string, falling back to viewer for
// anything unrecognized so an unknown role never gains access.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner
	case RoleManager:
		return RoleManager
	case RoleStaff:
		return RoleStaff
	default:
		return RoleViewer
	}
}

// Feature is an application capability gated by role.
type Feature string

const (
	FeatureMoodboards  Feature = "moodboards"
	FeatureLibrary     Feature = "library"
	FeatureTasks       Feature = "tasks"
	FeatureInbox       Feature = "inbox"
	FeatureComments    Feature = "comments"
	FeatureAccounting  Feature = "accounting"
	FeatureEditContent Feature = "edit_content"

	// FeatureModerate covers destructive actions on records the user
	// does not own: deleting others' comments, purging tasks.
	FeatureModerate Feature = "moderate"
)

// featureRoles is the static allow table. Absent entries are denied.
var featureRoles = map[Feature]map[Role]bool{
	FeatureMoodboards: {RoleOwner: true, RoleManager: true, RoleStaff: true, RoleViewer: true},
	FeatureLibrary:    {RoleOwner: true, RoleManager: true, RoleStaff: true, RoleViewer: true},
	FeatureTasks:      {RoleOwner: true, RoleManager: true, RoleStaff: true, RoleViewer: true},
	FeatureInbox:      {RoleOwner: true, RoleManager: true, RoleStaff: true, RoleViewer: true},
	FeatureComments:   {RoleOwner: true, RoleManager: true, RoleStaff: true},

	FeatureAccounting:  {RoleOwner: true, RoleManager: true},
	FeatureEditContent: {RoleOwner: true, RoleManager: true, RoleStaff: true},
	FeatureModerate:    {RoleOwner: true, RoleManager: true},
}

// Can reports whether the role may use the feature.
func Can(role Role, f Feature) bool {
	return featureRoles[f][role]
}

// RouteKind distinguishes exact paths from parametrized ones.
type RouteKind int

const (
	// RouteExact matches the path verbatim.
	RouteExact RouteKind = iota

	// RouteParam matches Path plus exactly one non-empty trailing
	// segment, e.g. "/tasks/" matches "/tasks/42" but not "/tasks/"
	// or "/tasks/42/edit".
	RouteParam
)

// Route binds a navigable path to the feature that gates it.
type Route struct {
	Kind    RouteKind
	Path    string
	Feature Feature
}

// routes is the full navigable surface. Paths not listed here are denied
// for every role.
var routes = []Route{
	{RouteExact, "/", FeatureTasks},
	{RouteExact, "/tasks", FeatureTasks},
	{RouteParam, "/tasks/", FeatureTasks},
	{RouteExact, "/inbox", FeatureInbox},
	{RouteExact, "/moodboards", FeatureMoodboards},
	{RouteParam, "/moodboards/", FeatureMoodboards},
	{RouteExact, "/materials", FeatureLibrary},
	{RouteParam, "/materials/", FeatureLibrary},
	{RouteExact, "/labels", FeatureLibrary},
	{RouteParam, "/labels/", FeatureLibrary},
	{RouteExact, "/accounting", FeatureAccounting},
	{RouteExact, "/accounting/orders", FeatureAccounting},
	{RouteExact, "/accounting/subscriptions", FeatureAccounting},
}

// Allowed reports whether the role may navigate to path. The query
// string, if any, is ignored.
func Allowed(role Role, path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, r := range routes {
		if r.matches(path) {
			return Can(role, r.Feature)
		}
	}
	return false
}

func (r Route) matches(path string) bool {
	switch r.Kind {
	case RouteExact:
		return path == r.Path
	case RouteParam:
		rest, ok := strings.CutPrefix(path, r.Path)
		return ok && rest != "" && !strings.Contains(rest, "/")
	default:
		return false
	}
}
