package attachment

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// OwnerType names an attachable entity. The value is what gets stored in
// attachments.attachable_type.
type OwnerType string

const OwnerPost OwnerType = "Post"

type OwnerRef struct {
	Type OwnerType
	ID   int64
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s#%d", o.Type, o.ID)
}

// OwnerResolver confirms that an owner row exists. Each attachable domain
// registers one.
type OwnerResolver interface {
	OwnerExists(ctx context.Context, id int64) (bool, error)
}

type OwnerResolverFunc func(ctx context.Context, id int64) (bool, error)

func (f OwnerResolverFunc) OwnerExists(ctx context.Context, id int64) (bool, error) {
	return f(ctx, id)
}

// Registry maps owner types to their resolvers. The database does not enforce
// attachable references; creating an attachment through Resolve is what keeps
// them valid.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[OwnerType]OwnerResolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[OwnerType]OwnerResolver)}
}

func (r *Registry) Register(t OwnerType, res OwnerResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[t] = res
}

// Lookup finds the registered type matching name, case-insensitively.
func (r *Registry) Lookup(name string) (OwnerType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for t := range r.resolvers {
		if strings.EqualFold(string(t), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return "", false
}

func (r *Registry) Types() []OwnerType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]OwnerType, 0, len(r.resolvers))
	for t := range r.resolvers {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Resolve returns nil when ref points at an existing owner.
func (r *Registry) Resolve(ctx context.Context, ref OwnerRef) error {
	r.mu.RLock()
	res, ok := r.resolvers[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOwnerType, ref.Type)
	}
	if ref.ID <= 0 {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, ref)
	}

	exists, err := res.OwnerExists(ctx, ref.ID)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", ref, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, ref)
	}
	return nil
}
