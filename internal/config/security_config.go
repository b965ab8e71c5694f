// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication, token used when present
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with a staff role required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"health":          SecurityPublic,
	"login":           SecurityPublic,
	"listOptions":     SecurityPublic,
	"listCars":        SecurityPublic,
	"quote":           SecurityPublic,
	"carAvailability": SecurityPublic,
	"createRequest":   SecurityPublic,

	// Access Protected
	"me": SecurityAccess,

	// Admin
	"adminListRequests":   SecurityAdmin,
	"adminCreateRequest":  SecurityAdmin,
	"adminGetRequest":     SecurityAdmin,
	"adminEditRequest":    SecurityAdmin,
	"adminAcceptRequest":  SecurityAdmin,
	"adminRejectRequest":  SecurityAdmin,
	"adminUndoReject":     SecurityAdmin,
	"adminSetPending":     SecurityAdmin,
	"adminCancelRental":   SecurityAdmin,
	"adminListRentals":    SecurityAdmin,
	"adminCreateRental":   SecurityAdmin,
	"adminExportRentals":  SecurityAdmin,
	"adminIssueContract":  SecurityAdmin,
	"adminRunTransitions": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
