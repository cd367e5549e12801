package common

import "errors"

// ErrUnauthorizedAdmin is returned when a role-management call is attempted
// by an address without the administrator role.
var ErrUnauthorizedAdmin = errors.New("caller lacks administrator role")

// Role identifiers consulted through the state manager's role registry.
const (
	// RoleAdmin may grant and revoke every other role.
	RoleAdmin = "ROLE_ADMIN"
	// RoleDepositor may fund an epoch's earnings pool.
	RoleDepositor = "ROLE_DEPOSITOR"
	// RoleCreator may issue and transfer vested positions.
	RoleCreator = "ROLE_CREATOR"
	// RoleRewarder may push epoch propagation into the stake ledgers. It is
	// granted to the rewards module address at genesis and never to a user.
	RoleRewarder = "ROLE_REWARDER"
)

// RoleView exposes read access to the role registry.
type RoleView interface {
	HasRole(role string, addr []byte) bool
}

// ModuleAddress derives the deterministic vault address for a module name.
// Module vaults hold locked capital and undistributed earnings; no key pair
// exists for them.
func ModuleAddress(name string) [20]byte {
	var out [20]byte
	seed := []byte("module/" + name)
	for i, b := range seed {
		out[i%20] ^= b
	}
	return out
}
