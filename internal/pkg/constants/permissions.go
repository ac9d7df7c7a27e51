package constants

const (
	ViewData     = "view_data"
	Trade        = "trade"
	ApplyIpo     = "apply_ipo"
	ManageStocks = "manage_stocks"
	ManageIpos   = "manage_ipos"
	RunAllotment = "run_allotment"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:     {Investor, Admin},
	Trade:        {Investor, Admin},
	ApplyIpo:     {Investor, Admin},
	ManageStocks: {Admin},
	ManageIpos:   {Admin},
	RunAllotment: {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
