// internal/testutil/mocks.go
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
)

// MockPipeline es un ports.Pipeline configurable que registra sus invocaciones.
type MockPipeline struct {
	mu sync.Mutex

	RunFunc func(ctx context.Context, files []domain.FileReference) error
	Calls   [][]domain.FileReference
}

// Run registra los archivos recibidos y delega en RunFunc si está definido.
func (m *MockPipeline) Run(ctx context.Context, files []domain.FileReference) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]domain.FileReference(nil), files...))
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, files)
	}
	return nil
}

// CallCount retorna el número de invocaciones de Run.
func (m *MockPipeline) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockBuilder es un ports.PipelineBuilder que retorna Pipeline o Err.
type MockBuilder struct {
	mu sync.Mutex

	Pipeline ports.Pipeline
	Err      error
	Created  []domain.ResolvedConfig
}

// Create registra la configuración recibida.
func (b *MockBuilder) Create(kind domain.PipelineKind, cfg domain.ResolvedConfig) (ports.Pipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Created = append(b.Created, cfg)
	if b.Err != nil {
		return nil, b.Err
	}
	return b.Pipeline, nil
}

// Constructions retorna cuántas veces se llamó a Create.
func (b *MockBuilder) Constructions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Created)
}

// RecordingSink guarda en memoria cada registro emitido.
type RecordingSink struct {
	mu      sync.Mutex
	Records []domain.ExecutionRecord
}

// Emit implementa ports.DiagnosticsSink.
func (s *RecordingSink) Emit(rec domain.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, rec)
}

// States retorna los estados emitidos en orden.
func (s *RecordingSink) States() []domain.ExecutionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ExecutionState, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.State
	}
	return out
}

// MemoryStorage es un ports.Storage en memoria indexado por la forma canónica.
type MemoryStorage struct {
	mu      sync.Mutex
	Inputs  map[string][]byte
	Outputs map[string][]byte
	Deleted []string
}

// NewMemoryStorage crea un storage vacío.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Inputs:  make(map[string][]byte),
		Outputs: make(map[string][]byte),
	}
}

// Put agrega un archivo de entrada.
func (s *MemoryStorage) Put(ref domain.FileReference, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inputs[ref.String()] = content
}

func (s *MemoryStorage) Name() string { return "memory" }

func (s *MemoryStorage) Fetch(ctx context.Context, ref domain.FileReference) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Inputs[ref.String()]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", ref, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Outputs[key] = data
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, ref domain.FileReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Inputs, ref.String())
	s.Deleted = append(s.Deleted, ref.String())
	return nil
}
