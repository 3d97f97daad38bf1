package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"

	"github.com/betbot/umactf/uma/types"
)

// ErrExists 同一 questionID 已记录
var ErrExists = errors.New("journal: question already recorded")

const (
	prefixLog = "log/"
	prefixIdx = "idx/"
	seqKey    = "meta/seq"
)

// Record 本地初始化记录，仅供审计，不作为问题状态的依据
type Record struct {
	Seq         uint64         `json:"seq"`
	QuestionID  common.Hash    `json:"question_id"`
	ConditionID common.Hash    `json:"condition_id"`
	TxHash      common.Hash    `json:"tx_hash"`
	Chain       types.Chain    `json:"chain"`
	Version     types.Version  `json:"version"`
	Adapter     common.Address `json:"adapter"`
	Title       string         `json:"title"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Journal 基于 Badger 的只追加记录
type Journal struct {
	db  *badger.DB
	seq *badger.Sequence
}

type OpenOptions struct {
	Path     string
	InMemory bool
	ReadOnly bool
}

func Open(opts OpenOptions) (*Journal, error) {
	var bopts badger.Options
	switch {
	case opts.InMemory:
		bopts = badger.DefaultOptions("").WithInMemory(true)
	case strings.TrimSpace(opts.Path) == "":
		return nil, errors.New("journal: path is required")
	default:
		bopts = badger.DefaultOptions(opts.Path).WithReadOnly(opts.ReadOnly)
	}
	db, err := badger.Open(bopts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	j := &Journal{db: db}
	if !opts.ReadOnly {
		seq, err := db.GetSequence([]byte(seqKey), 16)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: sequence: %w", err)
		}
		j.seq = seq
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	if j.seq != nil {
		_ = j.seq.Release()
	}
	return j.db.Close()
}

// Append 追加一条记录，Seq 由 journal 分配
func (j *Journal) Append(rec Record) (*Record, error) {
	if j == nil || j.db == nil {
		return nil, errors.New("journal: not opened")
	}
	if j.seq == nil {
		return nil, errors.New("journal: opened read-only")
	}
	if rec.QuestionID == (common.Hash{}) {
		return nil, errors.New("journal: question id is empty")
	}
	n, err := j.seq.Next()
	if err != nil {
		return nil, err
	}
	rec.Seq = n
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	logKey := logKey(n)

	err = j.db.Update(func(txn *badger.Txn) error {
		idx := idxKey(rec.QuestionID)
		if _, err := txn.Get(idx); err == nil {
			return ErrExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(logKey, val); err != nil {
			return err
		}
		return txn.Set(idx, logKey)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get 按 questionID 查找记录
func (j *Journal) Get(questionID common.Hash) (*Record, bool, error) {
	if j == nil || j.db == nil {
		return nil, false, errors.New("journal: not opened")
	}
	var (
		rec   Record
		found bool
	)
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idxKey(questionID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		lk, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(lk)
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

// List 按追加顺序返回全部记录
func (j *Journal) List() ([]Record, error) {
	if j == nil || j.db == nil {
		return nil, errors.New("journal: not opened")
	}
	var out []Record
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixLog)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// 定宽十进制，字典序即追加顺序
func logKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixLog, seq))
}

func idxKey(questionID common.Hash) []byte {
	return []byte(prefixIdx + questionID.Hex())
}
