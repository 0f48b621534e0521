// Package storage persists bot state in a single JSON datastore file:
// the ordered collection of internal-affairs case records and a bounded
// per-guild command history.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	casesKey            = "ia_cases"
	commandHistoryLimit = 20
)

// CommandHistoryRecord is one logged command execution.
type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Datetime    time.Time `json:"datetime"`
}

// guildRecord is the per-guild slot in the datastore.
type guildRecord struct {
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
}

// Storage wraps the datastore with typed accessors. Read-modify-write
// sequences are serialized by a single mutex; the datastore itself only
// guarantees atomicity per key operation.
type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

// New opens (or creates) the datastore file at filePath.
func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Close flushes and closes the underlying datastore.
func (s *Storage) Close() error {
	return s.ds.Close()
}

// decode round-trips a datastore value into a typed destination. The
// datastore hands back generic maps after a reload, so values go through
// JSON on the way out.
func decode(value any, dst any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal stored value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal stored value: %w", err)
	}
	return nil
}

func (s *Storage) guildRecord(guildID string) (*guildRecord, error) {
	value, exists := s.ds.Get("guild:" + guildID)
	if !exists {
		return &guildRecord{}, nil
	}
	var rec guildRecord
	if err := decode(value, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AppendCommandToHistory logs a command execution, keeping only the most
// recent entries per guild.
func (s *Storage) AppendCommandToHistory(guildID string, rec CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, rec)
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	s.ds.Add("guild:"+guildID, record)
	return nil
}

// FetchCommandHistory returns the logged commands for a guild, oldest first.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}
