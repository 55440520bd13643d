package voice

// Store exposes voice profile retrieval for the enrichment pipeline.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
	FindByGender(gender string) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice, suitable for a demo
// deployment with a fixed voice roster.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the configured voice profiles.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Profile{}, false
}

// FindByGender returns the first profile matching the requested gender.
func (s *MemoryStore) FindByGender(gender string) (Profile, bool) {
	for _, item := range s.items {
		if item.Gender == gender {
			return item, true
		}
	}
	return Profile{}, false
}
