package cache

import "encoding/json"

// Embedding payloads carry a version tag so a format change shows up as a
// recomputable Corrupt state instead of silently decoding garbage.
const vectorVersion = 1

type vectorEnvelope struct {
	Version int       `json:"v"`
	Vector  []float64 `json:"vector"`
}

// SaveVector persists an embedding vector under its URL identity.
func SaveVector(s Store, identity string, vector []float64) {
	data, err := json.Marshal(vectorEnvelope{Version: vectorVersion, Vector: vector})
	if err != nil {
		// A []float64 always marshals; nothing useful to do here.
		return
	}
	s.Save(KindEmbedding, identity, data)
}

// LoadVector loads a previously saved embedding vector. Undecodable or
// differently versioned payloads come back as Corrupt, which callers treat
// exactly like a miss.
func LoadVector(s Store, identity string) ([]float64, State) {
	data, state := s.Load(KindEmbedding, identity)
	if state != Hit {
		return nil, state
	}

	var env vectorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Corrupt
	}
	if env.Version != vectorVersion || env.Vector == nil {
		return nil, Corrupt
	}
	return env.Vector, Hit
}
