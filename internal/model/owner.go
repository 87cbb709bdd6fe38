package model

import "time"

// Owner is a persisted entity that can have files attached.
// A non-nil DeletedAt marks the owner as soft-deleted; it still exists.
type Owner struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Ref returns the reference files use to point at this owner.
func (o *Owner) Ref() OwnerRef {
	return OwnerRef{Kind: o.Kind, ID: o.ID}
}

// Trashed reports whether the owner is soft-deleted.
func (o *Owner) Trashed() bool {
	return o.DeletedAt != nil
}
