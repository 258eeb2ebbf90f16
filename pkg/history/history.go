package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultStorageFileName = ".zecbridge-history.json"

// Kind distinguishes the two execution paths a record can come from.
type Kind string

const (
	KindSwap  Kind = "swap"  // aggregator-routed multi-step swap
	KindTrade Kind = "trade" // fixed-rate deposit-address trade
)

// Record is one completed or failed execution.
type Record struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	CreatedAt      time.Time `json:"created_at"`
	OriginChain    int64     `json:"origin_chain,omitempty"`
	DestChain      int64     `json:"dest_chain,omitempty"`
	SentAmount     string    `json:"sent_amount"`
	SentSymbol     string    `json:"sent_symbol"`
	ReceivedAmount string    `json:"received_amount"`
	ReceivedSymbol string    `json:"received_symbol"`
	TxHash         string    `json:"tx_hash,omitempty"`
	DepositAddress string    `json:"deposit_address,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
}

// fileFormat is the JSON structure on disk.
type fileFormat struct {
	Records map[string]*Record `json:"records"`
}

// Store persists activity records to a JSON file in the home directory.
// Writes go through a temp file and rename so a crash cannot corrupt it.
type Store struct {
	filePath string
	mu       sync.RWMutex
	records  map[string]*Record
}

// NewStore opens (or prepares to create) the history file. An empty path
// selects the default file in the home directory.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	store := &Store{
		filePath: filePath,
		records:  make(map[string]*Record),
	}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}
	return store, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	s.records = file.Records
	if s.records == nil {
		s.records = make(map[string]*Record)
	}
	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	file := fileFormat{Records: s.records}
	data, err := json.MarshalIndent(file, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Add stores a record, assigning an id and timestamp if missing.
func (s *Store) Add(record *Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	return s.save()
}

// Get retrieves a record by id.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("record '%s' not found", id)
	}
	return record, nil
}

// List returns all records, newest first.
func (s *Store) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// ListByKind returns records of one kind, newest first.
func (s *Store) ListByKind(kind Kind) []*Record {
	all := s.List()
	records := make([]*Record, 0, len(all))
	for _, record := range all {
		if record.Kind == kind {
			records = append(records, record)
		}
	}
	return records
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FilePath returns the backing file path.
func (s *Store) FilePath() string {
	return s.filePath
}
