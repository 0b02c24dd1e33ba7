package embedding

import (
	"context"
	"fmt"
)

// Mock is a fixed-response embedding.Service for tests, generalizing the
// teacher's mocks/llm.MockLLM (which always returned one fixed vector)
// into a batched implementation that can also be told to fail a number
// of times before succeeding, for exercising the pipeline's retry policy.
type Mock struct {
	// Dim is the vector dimension returned for each input text.
	Dim int
	// FailTimes is how many leading Embed calls return Err before
	// succeeding.
	FailTimes int
	// Err is the error returned while FailTimes has not been exhausted;
	// defaults to a generic provider-unavailable-shaped error.
	Err error

	calls int
}

func (m *Mock) Embed(ctx context.Context, texts []string, model string) ([][]float32, error) {
	m.calls++
	if m.calls <= m.FailTimes {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, fmt.Errorf("mock embedding: transient failure (call %d)", m.calls)
	}

	dim := m.Dim
	if dim == 0 {
		dim = 3
	}

	vectors := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, dim)
		v[0] = 1.0
		vectors[i] = v
	}
	return vectors, nil
}
