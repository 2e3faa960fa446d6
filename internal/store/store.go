// Package store persists game rows and player identities in BadgerDB.
// Rows live under "game:<kind>:<id>", players under "player:<id>" with a
// name index for login lookups.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/game"
)

// Store wraps BadgerDB for persistent storage.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database, used by tests.
func Open(path string, log *zap.Logger) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = badgerLogger{log.Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Reset drops every key. Used by the startup reseed.
func (s *Store) Reset() error {
	return s.db.DropAll()
}

func gameKey(kind game.Kind, id string) []byte {
	return []byte("game:" + string(kind) + ":" + id)
}

func gamePrefix(kind game.Kind) []byte {
	return []byte("game:" + string(kind) + ":")
}

func playerKey(id string) []byte {
	return []byte("player:" + id)
}

func playerNameKey(name string) []byte {
	return []byte("playername:" + name)
}

// SaveGame upserts a game row.
func (s *Store) SaveGame(row *game.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(row.Kind, row.ID), data)
	})
}

// GetGame loads a game row, game.ErrNotFound when absent.
func (s *Store) GetGame(kind game.Kind, id string) (*game.Row, error) {
	var row game.Row
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(kind, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s game %s", game.ErrNotFound, kind, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		})
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListGames returns every stored row of a kind, by prefix iteration.
func (s *Store) ListGames(kind game.Kind) ([]*game.Row, error) {
	var rows []*game.Row
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := gamePrefix(kind)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var row game.Row
				if err := json.Unmarshal(val, &row); err != nil {
					return err
				}
				rows = append(rows, &row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteGame removes a game row, game.ErrNotFound when absent.
func (s *Store) DeleteGame(kind game.Kind, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := gameKey(kind, id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s game %s", game.ErrNotFound, kind, id)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// SavePlayer upserts a player and its name index entry.
func (s *Store) SavePlayer(p *game.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(playerKey(p.ID), data); err != nil {
			return err
		}
		return txn.Set(playerNameKey(p.Name), []byte(p.ID))
	})
}

// GetPlayer loads a player by id, game.ErrNotFound when absent.
func (s *Store) GetPlayer(id string) (*game.Player, error) {
	var p game.Player
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(playerKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: player %s", game.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlayerByName resolves the name index, game.ErrNotFound when absent.
func (s *Store) GetPlayerByName(name string) (*game.Player, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(playerNameKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: player named %q", game.ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlayer(id)
}

// badgerLogger bridges badger's logger to zap.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) { l.log.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}
func (l badgerLogger) Infof(format string, args ...interface{})  { l.log.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{}) { l.log.Debugf(format, args...) }
