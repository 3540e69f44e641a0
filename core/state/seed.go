package state

type storedSeed struct {
	Seed   []byte
	Height uint64
}

// RandomSeed loads the current random seed and the height it was set at.
func (m *Manager) RandomSeed() ([]byte, uint64, bool, error) {
	stored := storedSeed{}
	ok, err := m.get(randomSeedKey, &stored)
	if err != nil || !ok {
		return nil, 0, false, err
	}
	return append([]byte(nil), stored.Seed...), stored.Height, true, nil
}

// RandomSeedPut rotates the random seed, recording the height of rotation.
func (m *Manager) RandomSeedPut(seed []byte, height uint64) error {
	return m.put(randomSeedKey, &storedSeed{
		Seed:   append([]byte(nil), seed...),
		Height: height,
	})
}
