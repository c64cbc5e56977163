package state

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// SetRole associates an address with the specified role. Duplicate assignments
// are ignored while the stored list remains sorted for determinism.
func (tx *Tx) SetRole(role string, addr [20]byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("role must not be empty")
	}
	members, err := tx.RoleMembers(trimmed)
	if err != nil {
		return err
	}
	for _, existing := range members {
		if existing == addr {
			return nil
		}
	}
	members = append(members, addr)
	sort.Slice(members, func(i, j int) bool {
		return bytes.Compare(members[i][:], members[j][:]) < 0
	})
	return tx.putRLP(roleKey(trimmed), members)
}

// RemoveRole drops addr from the role.
func (tx *Tx) RemoveRole(role string, addr [20]byte) error {
	trimmed := strings.TrimSpace(role)
	members, err := tx.RoleMembers(trimmed)
	if err != nil {
		return err
	}
	kept := members[:0]
	for _, existing := range members {
		if existing != addr {
			kept = append(kept, existing)
		}
	}
	return tx.putRLP(roleKey(trimmed), kept)
}

// RoleMembers returns all addresses assigned to the provided role.
func (tx *Tx) RoleMembers(role string) ([][20]byte, error) {
	var members [][20]byte
	if _, err := tx.getRLP(roleKey(strings.TrimSpace(role)), &members); err != nil {
		return nil, err
	}
	return members, nil
}

// HasRole reports whether the provided address is associated with the
// specified role. Read errors result in a false return.
func (tx *Tx) HasRole(role string, addr [20]byte) bool {
	members, err := tx.RoleMembers(role)
	if err != nil {
		return false
	}
	for _, member := range members {
		if member == addr {
			return true
		}
	}
	return false
}
