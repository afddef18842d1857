// Package routes decides, per navigation, whether the current session may
// view a destination. The decision is pure: no side effects, recomputed on
// every navigation, never cached.
package routes

import "notesportal/internal/session"

type Destination string

const (
	DestRoot             Destination = "/"
	DestLogin            Destination = "/login"
	DestRegister         Destination = "/register"
	DestStudentDashboard Destination = "/student-dashboard"
	DestPurchases        Destination = "/purchases"
	DestAdminDashboard   Destination = "/admin-dashboard"
	DestWallet           Destination = "/wallet"
)

// requiredRole maps each protected destination to the role allowed to view
// it. Public destinations are absent.
var requiredRole = map[Destination]string{
	DestStudentDashboard: session.RoleStudent,
	DestPurchases:        session.RoleStudent,
	DestAdminDashboard:   session.RoleAdmin,
	DestWallet:           session.RoleAdmin,
}

type Decision struct {
	Allow    bool
	Redirect Destination
}

func allow() Decision                  { return Decision{Allow: true} }
func redirect(to Destination) Decision { return Decision{Redirect: to} }

// Landing is the role-appropriate home destination.
func Landing(role string) Destination {
	if role == session.RoleAdmin {
		return DestAdminDashboard
	}
	return DestStudentDashboard
}

// Decide gates one navigation attempt. No session on a protected destination
// redirects to login; a role mismatch silently redirects to the identity's
// own landing destination, never to an error page. The root resolves
// directly to login or the landing destination.
func Decide(sess session.Session, ok bool, dest Destination) Decision {
	if dest == DestRoot {
		if !ok {
			return redirect(DestLogin)
		}
		return redirect(Landing(sess.User.Role))
	}

	role, protected := requiredRole[dest]
	if !protected {
		return allow()
	}
	if !ok {
		return redirect(DestLogin)
	}
	if sess.User.Role != role {
		return redirect(Landing(sess.User.Role))
	}
	return allow()
}
