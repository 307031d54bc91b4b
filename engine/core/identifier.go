package core

import "fmt"

// IdentifierPool hands out small integer ids that are reused once released.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool(initialCapacity int) *IdentifierPool {
	return &IdentifierPool{owners: make([]interface{}, initialCapacity)}
}

func (ip *IdentifierPool) Acquire(owner interface{}) uint32 {
	if owner == nil {
		// nil marks a free slot, so it can not own an id.
		owner = struct{}{}
	}
	for i := range ip.owners {
		// Existing free spot. Take it.
		if ip.owners[i] == nil {
			ip.owners[i] = owner
			return uint32(i)
		}
	}
	// If here, no existing free slots. Need a new id, so push one.
	ip.owners = append(ip.owners, owner)
	return uint32(len(ip.owners) - 1)
}

func (ip *IdentifierPool) Owner(id uint32) interface{} {
	if int(id) >= len(ip.owners) {
		return nil
	}
	return ip.owners[id]
}

func (ip *IdentifierPool) Release(id uint32) error {
	if int(id) >= len(ip.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(ip.owners))
	}
	// Just zero out the entry, making it available for use.
	ip.owners[id] = nil
	return nil
}

// InUse counts the ids currently held.
func (ip *IdentifierPool) InUse() int {
	n := 0
	for _, o := range ip.owners {
		if o != nil {
			n++
		}
	}
	return n
}
