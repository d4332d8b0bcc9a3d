// Package secure provides memory-safe handling of plaintext secret values.
//
// It wraps the memguard library so a value read from a flag, stdin or a
// prompt is encrypted at rest in memory, protected from swapping via mlock,
// and wiped when no longer needed. If mlock is unavailable memguard degrades
// to standard memory. For cleanup of all protected data at process exit,
// call memguard.Purge() from main.
package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Buffer holds a secret value encrypted at rest in memory.
type Buffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewBuffer copies data into a protected memory region. The caller should
// not reuse the input slice afterward.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the value into a locked buffer. The caller MUST call
// Destroy() on the returned buffer to wipe the plaintext when done.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return b.enclave.Open()
}

// Destroy marks the buffer as destroyed. Idempotent; after Destroy, Open
// returns an empty buffer. The encrypted enclave data is garbage collected.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enclave = nil
	b.destroyed = true
}
