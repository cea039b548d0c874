package contract

import (
	"fmt"
	"strings"
)

// Type is the kind of a contract.
type Type string

const (
	TypeLOA Type = "LOA"
	TypeVAC Type = "VAC"
	TypeLLD Type = "LLD"
)

// Types lists the accepted contract types.
var Types = []Type{TypeLOA, TypeVAC, TypeLLD}

// ParseType returns the contract type named s.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown contract type %q", s)
}

// MaxDuration is the longest contract duration in months.
const MaxDuration = 36

// Contract is a subscription owned by a user.
type Contract struct {
	ID       int     `json:"id" yaml:"id"`
	Type     Type    `json:"type" yaml:"type" binding:"required,oneof=LOA VAC LLD"`
	Duration int     `json:"duration" yaml:"duration" binding:"required,min=1,max=36"`
	Price    float64 `json:"price" yaml:"price" binding:"required,gt=0"`
	UserID   int     `json:"userId" yaml:"userId" binding:"required,min=1"`
}

func (c Contract) String() string {
	return fmt.Sprintf("Contract{id=%d, type=%s, duration=%d, price=%.2f, userId=%d}",
		c.ID, c.Type, c.Duration, c.Price, c.UserID)
}

// UserInfo is what the users service knows about a contract owner.
type UserInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Address   string `json:"address,omitempty"`
	Username  string `json:"username"`
}

// Info is a contract enriched with its owner's details.
type Info struct {
	Contract
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Username  string `json:"username,omitempty"`
}

// NewInfo creates an Info without user details.
func NewInfo(c Contract) Info {
	return Info{Contract: c}
}

// SetUser copies the user details into the info.
func (i *Info) SetUser(u UserInfo) {
	i.FirstName = u.FirstName
	i.LastName = u.LastName
	i.Role = u.Role
	i.Email = u.Email
	i.Address = u.Address
	i.Username = u.Username
}

// Roles of contract owners.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// allowed reports whether a user with role may hold a contract of type t.
// USER may not hold VAC contracts and ADMIN may not hold LOA contracts.
func allowed(role string, t Type) bool {
	switch role {
	case RoleUser:
		return t != TypeVAC
	case RoleAdmin:
		return t != TypeLOA
	default:
		return true
	}
}
