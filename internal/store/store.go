// Package store persists small JSON documents (the user profile and the
// cart) in a key-value backend: memory, files on disk or PostgreSQL.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that exists but does not decode.
var ErrCorrupt = errors.New("corrupt stored value")

// KV is the storage contract. Get returns (nil, nil) for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Namespaced prefixes every key with "{namespace}:" so several browsers
// can share one backend.
type Namespaced struct {
	kv     KV
	prefix string
}

func Namespace(kv KV, namespace string) *Namespaced {
	return &Namespaced{kv: kv, prefix: namespace + ":"}
}

func (n *Namespaced) Get(key string) ([]byte, error)     { return n.kv.Get(n.prefix + key) }
func (n *Namespaced) Put(key string, value []byte) error { return n.kv.Put(n.prefix+key, value) }
func (n *Namespaced) Delete(key string) error            { return n.kv.Delete(n.prefix + key) }

// LoadJSON decodes key into out. It reports false when the key is absent
// and wraps ErrCorrupt when the stored bytes are not valid JSON for out.
func LoadJSON(kv KV, key string, out any) (bool, error) {
	b, err := kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if b == nil {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func SaveJSON(kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Put(key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
