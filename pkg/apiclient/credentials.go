package apiclient

import "sync"

// CredentialStore keeps the session token. Platform keychains implement it
// in the app; MemoryCredentials is enough for tests and tooling.
type CredentialStore interface {
	Token() string
	Set(token string)
	Clear()
}

type MemoryCredentials struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryCredentials) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryCredentials) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MemoryCredentials) Clear() {
	m.Set("")
}
