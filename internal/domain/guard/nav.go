package guard

import domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"

// NavItem is one sidebar entry of the dashboard shell.
type NavItem struct {
	Label    string
	Path     string
	Children []NavItem
}

var studentNav = []NavItem{
	{Label: "My Courses", Path: "/dashboard/student/courses"},
	{Label: "Private Lessons", Path: "/dashboard/student/private-lessons"},
	{Label: "Make an Order", Path: "/dashboard/student/make-order"},
	{Label: "Language Study", Path: "/dashboard/student/language-study"},
	{Label: "Abilities", Path: "/dashboard/student/abilities"},
	{Label: "Books", Path: "/dashboard/student/books"},
	{Label: "Settings", Path: "/settings", Children: []NavItem{
		{Label: "Profile", Path: "/settings/profile"},
		{Label: "Payment", Path: "/settings/payment"},
	}},
}

var teacherNav = []NavItem{
	{Label: "Courses", Path: "/dashboard/teacher/courses"},
	{Label: "Lessons", Path: "/dashboard/teacher/lessons"},
	{Label: "Orders", Path: "/dashboard/teacher/orders"},
	{Label: "Timetable", Path: "/dashboard/teacher/timetable"},
	{Label: "Transactions", Path: "/dashboard/teacher/transactions"},
	{Label: "Reviews", Path: "/dashboard/teacher/reviews"},
	{Label: "Disputes", Path: "/dashboard/teacher/disputes"},
	{Label: "Settings", Path: "/settings", Children: []NavItem{
		{Label: "Profile", Path: "/settings/profile"},
		{Label: "Lesson Types", Path: "/settings/types"},
		{Label: "Revenue", Path: "/settings/revenue"},
		{Label: "Payment", Path: "/settings/payment"},
		{Label: "Courses", Path: "/settings/courses"},
	}},
}

var adminNav = []NavItem{
	{Label: "Overview", Path: DashboardPath},
	{Label: "Users", Path: "/users"},
	{Label: "Disputes", Path: "/disputes"},
}

var logoutItem = NavItem{Label: "Logout", Path: "/logout"}

// NavigationFor returns the sidebar for role. Every role ends with the logout entry;
// the unknown role only gets logout.
func NavigationFor(role domainauth.Role) []NavItem {
	var items []NavItem
	switch role {
	case domainauth.RoleStudent:
		items = studentNav
	case domainauth.RoleTeacher:
		items = teacherNav
	case domainauth.RoleAdmin:
		items = adminNav
	}
	out := make([]NavItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, logoutItem)
}

// LoginLanding is where a successful login lands when no return path was captured.
func LoginLanding(role domainauth.Role) string {
	switch role {
	case domainauth.RoleAdmin:
		return DashboardPath
	case domainauth.RoleTeacher:
		return "/sessions"
	default:
		return "/courses"
	}
}

// DashboardHome is where registration and phone verification land.
func DashboardHome(role domainauth.Role) string {
	switch role {
	case domainauth.RoleAdmin:
		return DashboardPath
	case domainauth.RoleTeacher:
		return DashboardPath + "/teacher"
	default:
		return DashboardPath + "/student"
	}
}
