package auth

import "fmt"

type Ability string

const (
	AbilityManageAttachments Ability = "attachments.manage"
	AbilityManagePosts       Ability = "posts.manage"
	AbilityManageContact     Ability = "contact.manage"
)

// Authorizer decides whether an actor may use an ability.
type Authorizer interface {
	Authorize(actor Actor, ability Ability) error
}

// Policy is a static role to ability table.
type Policy struct {
	grants map[UserRole]map[Ability]struct{}
}

func NewPolicy() *Policy {
	p := &Policy{grants: map[UserRole]map[Ability]struct{}{}}
	p.Grant(RoleAdmin, AbilityManageAttachments, AbilityManagePosts, AbilityManageContact)
	p.Grant(RoleManager, AbilityManageAttachments, AbilityManagePosts, AbilityManageContact)
	return p
}

func (p *Policy) Grant(role UserRole, abilities ...Ability) {
	set, ok := p.grants[role]
	if !ok {
		set = map[Ability]struct{}{}
		p.grants[role] = set
	}
	for _, a := range abilities {
		set[a] = struct{}{}
	}
}

func (p *Policy) Authorize(actor Actor, ability Ability) error {
	if actor.IsZero() {
		return ErrUnauthenticated
	}
	if _, ok := p.grants[actor.Role][ability]; !ok {
		return fmt.Errorf("%w: role %q lacks %s", ErrForbidden, actor.Role, ability)
	}
	return nil
}
