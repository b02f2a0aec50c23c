// Package txstore keeps fulfilled transactions in a leveldb database.
//
// Keys are prefixed by a single byte naming the pool they belong to:
//
//	T<txid>                          canonical transaction JSON
//	A<asset id>/<txid>               asset index
//	O<public key>/<txid>:<index>     outputs locked to a key
//	S<txid>:<index>                  spending transaction of an output
//
// Stored transactions never change. Put is idempotent for identical content and
// refuses anything else under an existing id.
package txstore

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/planetmint/planetmint-driver-go/internal/transaction"
)

const (
	prefixTransaction = 'T'
	prefixAsset       = 'A'
	prefixOutput      = 'O'
	prefixSpent       = 'S'
)

const currentVersion = 1

var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrConflict    = errors.New("a different transaction is stored under this id")
	ErrDoubleSpend = errors.New("output already spent")
	ErrClosed      = errors.New("store is closed")
)

// Store is a leveldb backed transaction store. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens (creating if needed) the store in dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &ldb_opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", dir, err)
	}

	version, err := db.Get(versionKey, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		v := make([]byte, 4)
		binary.BigEndian.PutUint32(v, currentVersion)
		if err := db.Put(versionKey, v, nil); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to write store version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("failed to read store version: %w", err)
	case len(version) != 4 || binary.BigEndian.Uint32(version) > currentVersion:
		db.Close()
		return nil, fmt.Errorf("incompatible store version in %s", dir)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping reports whether the database is open and answering.
func (s *Store) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.GetProperty("leveldb.num-files-at-level0")
	return err
}

// Put stores a fulfilled transaction and indexes its assets and outputs.
// The id must match the content. Spending an output already spent by another
// transaction fails with ErrDoubleSpend.
func (s *Store) Put(tx *transaction.Transaction) error {
	if err := transaction.VerifyID(tx); err != nil {
		return err
	}
	data, err := transaction.Serialize(tx)
	if err != nil {
		return err
	}
	txid := tx.TxID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	existing, err := s.db.Get(key(prefixTransaction, txid), nil)
	switch {
	case err == nil:
		if bytes.Equal(existing, data) {
			return nil
		}
		return fmt.Errorf("%s: %w", txid, ErrConflict)
	case !errors.Is(err, leveldb.ErrNotFound):
		return err
	}

	batch := new(leveldb.Batch)
	spending := make(map[string]bool, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if in.Fulfills == nil {
			continue
		}
		ref := outputKey(*in.Fulfills)
		if spending[ref] {
			return fmt.Errorf("output %s spent twice by %s: %w", ref, txid, ErrDoubleSpend)
		}
		spending[ref] = true

		spentKey := key(prefixSpent, ref)
		if spender, err := s.db.Get(spentKey, nil); err == nil {
			return fmt.Errorf("output %d of %s spent by %s: %w", in.Fulfills.OutputIndex, in.Fulfills.TransactionID, spender, ErrDoubleSpend)
		} else if !errors.Is(err, leveldb.ErrNotFound) {
			return err
		}
		batch.Put(spentKey, []byte(txid))
	}

	for _, assetID := range assetIDs(tx) {
		batch.Put(key(prefixAsset, assetID, "/", txid), nil)
	}
	for i, out := range tx.Outputs {
		link := transaction.TransactionLink{TransactionID: txid, OutputIndex: i}
		for _, pk := range out.PublicKeys {
			batch.Put(key(prefixOutput, pk, "/", outputKey(link)), nil)
		}
	}
	batch.Put(key(prefixTransaction, txid), data)

	return s.db.Write(batch, nil)
}

// Get returns the transaction stored under txid.
func (s *Store) Get(txid string) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.get(txid)
}

func (s *Store) get(txid string) (*transaction.Transaction, error) {
	data, err := s.db.Get(key(prefixTransaction, txid), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", txid, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var tx transaction.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("corrupt transaction %s: %w", txid, err)
	}
	return &tx, nil
}

// Has reports whether txid is stored.
func (s *Store) Has(txid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return false, ErrClosed
	}
	return s.db.Has(key(prefixTransaction, txid), nil)
}

// List returns every stored transaction ordered by id.
func (s *Store) List() ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	iter := s.db.NewIterator(ldb_util.BytesPrefix([]byte{prefixTransaction}), nil)
	defer iter.Release()

	var txs []*transaction.Transaction
	for iter.Next() {
		var tx transaction.Transaction
		if err := json.Unmarshal(iter.Value(), &tx); err != nil {
			return nil, fmt.Errorf("corrupt transaction %s: %w", iter.Key()[1:], err)
		}
		txs = append(txs, &tx)
	}
	return txs, iter.Error()
}

// Delete removes txid and its index entries. Outputs it spent become unspent again.
func (s *Store) Delete(txid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	tx, err := s.get(txid)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for _, in := range tx.Inputs {
		if in.Fulfills != nil {
			batch.Delete(key(prefixSpent, outputKey(*in.Fulfills)))
		}
	}
	for _, assetID := range assetIDs(tx) {
		batch.Delete(key(prefixAsset, assetID, "/", txid))
	}
	for i, out := range tx.Outputs {
		link := transaction.TransactionLink{TransactionID: txid, OutputIndex: i}
		for _, pk := range out.PublicKeys {
			batch.Delete(key(prefixOutput, pk, "/", outputKey(link)))
		}
	}
	batch.Delete(key(prefixTransaction, txid))
	return s.db.Write(batch, nil)
}

// ByAsset returns the transactions touching assetID in id order, optionally only
// those of operation op.
func (s *Store) ByAsset(assetID string, op transaction.Operation) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	prefix := key(prefixAsset, assetID, "/")
	iter := s.db.NewIterator(ldb_util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var txs []*transaction.Transaction
	for iter.Next() {
		tx, err := s.get(string(iter.Key()[len(prefix):]))
		if err != nil {
			return nil, err
		}
		if op == "" || tx.Operation == op {
			txs = append(txs, tx)
		}
	}
	return txs, iter.Error()
}

// Outputs lists the outputs locked to publicKey. spent selects spent (true) or
// unspent (false) outputs; nil selects both.
func (s *Store) Outputs(publicKey string, spent *bool) ([]transaction.TransactionLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	prefix := key(prefixOutput, publicKey, "/")
	iter := s.db.NewIterator(ldb_util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var links []transaction.TransactionLink
	for iter.Next() {
		link, err := parseOutputKey(string(iter.Key()[len(prefix):]))
		if err != nil {
			return nil, err
		}
		if spent != nil {
			isSpent, err := s.db.Has(key(prefixSpent, outputKey(link)), nil)
			if err != nil {
				return nil, err
			}
			if isSpent != *spent {
				continue
			}
		}
		links = append(links, link)
	}
	return links, iter.Error()
}

// SpentBy returns the id of the transaction spending link, or "" if it is unspent.
func (s *Store) SpentBy(link transaction.TransactionLink) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", ErrClosed
	}
	spender, err := s.db.Get(key(prefixSpent, outputKey(link)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	return string(spender), err
}

// assetIDs are the ids a transaction is indexed under: its own id when it mints
// an asset, plus every asset it references.
func assetIDs(tx *transaction.Transaction) []string {
	var ids []string
	if tx.Operation == transaction.OperationCreate || tx.Operation == transaction.OperationCompose {
		ids = append(ids, tx.TxID())
	}
	for _, a := range tx.Assets {
		if a.IsRef() {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func key(prefix byte, parts ...string) []byte {
	k := []byte{prefix}
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func outputKey(link transaction.TransactionLink) string {
	return link.TransactionID + ":" + strconv.Itoa(link.OutputIndex)
}

func parseOutputKey(s string) (transaction.TransactionLink, error) {
	txid, index, ok := strings.Cut(s, ":")
	if !ok {
		return transaction.TransactionLink{}, fmt.Errorf("corrupt output key %q", s)
	}
	n, err := strconv.Atoi(index)
	if err != nil {
		return transaction.TransactionLink{}, fmt.Errorf("corrupt output key %q", s)
	}
	return transaction.TransactionLink{TransactionID: txid, OutputIndex: n}, nil
}
