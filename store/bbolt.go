package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.etcd.io/bbolt"

	"auxout/standalone/config"
)

type BBolt struct {
	db *bbolt.DB
}

const (
	bboltAuxoutBucket = "auxout"

	// auxout keys
	bboltMachineKey = "machine"
)

// OpenBBolt opens a BBoltDB database at the given path and creates the needed buckets
// if they don't exist.
func OpenBBolt(path string, mode os.FileMode, options *bbolt.Options) (*BBolt, error) {
	db, err := bbolt.Open(path, mode, options)
	if err != nil {
		return nil, fmt.Errorf("unable to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bboltAuxoutBucket)); err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltAuxoutBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create bbolt buckets: %w", err)
	}

	return &BBolt{
		db: db,
	}, nil
}

func (b *BBolt) Close() error {
	return b.db.Close()
}

// MachineConfig returns the stored config, or ErrNotFound
func (b *BBolt) MachineConfig() (*config.MachineConfig, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bboltAuxoutBucket))
		if v := bucket.Get([]byte(bboltMachineKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get machine config: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("machine config: %w", ErrNotFound)
	}

	// LoadConfig accepts JSON and applies defaults and validation
	c, err := config.LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("stored machine config: %w", err)
	}
	return c, nil
}

// PutMachineConfig validates and stores a config
func (b *BBolt) PutMachineConfig(c *config.MachineConfig) error {
	if err := config.Validate(c); err != nil {
		return err
	}

	machineJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to marshal machine config: %w", err)
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bboltAuxoutBucket))
		if err := bucket.Put([]byte(bboltMachineKey), machineJSON); err != nil {
			return fmt.Errorf("unable to put machine config: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to update machine config: %w", err)
	}

	return nil
}
