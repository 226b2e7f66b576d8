package vault

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/farmcart/pkg/security"
)

// Vault seals JSON values with the device key before they reach a Backend.
type Vault struct {
	backend Backend
	key     []byte
}

func New(backend Backend, key []byte) (*Vault, error) {
	if backend == nil {
		return nil, fmt.Errorf("vault backend is required")
	}
	if len(key) != security.KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes", security.KeySize)
	}
	return &Vault{backend: backend, key: append([]byte(nil), key...)}, nil
}

// Put encodes and seals value under name, replacing any previous value.
func (v *Vault) Put(ctx context.Context, name string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	sealed, err := security.Seal(v.key, plain)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	if err := v.backend.Set(ctx, name, sealed); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Get opens the value under name into dst. found is false when nothing is
// stored; a blob that fails to open or decode is an error.
func (v *Vault) Get(ctx context.Context, name string, dst any) (found bool, err error) {
	sealed, err := v.backend.Get(ctx, name)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if sealed == nil {
		return false, nil
	}
	plain, err := security.Open(v.key, sealed)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	if err := json.Unmarshal(plain, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// Delete clears name. Clearing an empty slot is not an error.
func (v *Vault) Delete(ctx context.Context, name string) error {
	if err := v.backend.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
