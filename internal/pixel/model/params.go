package model

import (
	"errors"
	"time"
)

// IndexingParams is the read-only configuration of an indexing run.
type IndexingParams struct {
	Network       Network
	StartHeight   uint64
	Confirmations uint64
	BatchSize     int
	Workers       int
	QueueCapacity int
	MaxReorgDepth uint64
	RetryCeiling  int
	RetryBackoff  time.Duration
	MaxBackoff    time.Duration
	PollInterval  time.Duration
}

// DefaultIndexingParams returns the defaults used by the node.
func DefaultIndexingParams() IndexingParams {
	return IndexingParams{
		Network:       NetworkMainnet,
		StartHeight:   1,
		Confirmations: 6,
		BatchSize:     64,
		Workers:       4,
		QueueCapacity: 64,
		MaxReorgDepth: 100,
		RetryCeiling:  10,
		RetryBackoff:  time.Second,
		MaxBackoff:    time.Minute,
		PollInterval:  10 * time.Second,
	}
}

// Validate checks the parameters for values the pipeline cannot work with.
func (p IndexingParams) Validate() error {
	var errs []error
	if p.StartHeight == 0 {
		errs = append(errs, errors.New("start height must be positive"))
	}
	if p.Confirmations == 0 {
		errs = append(errs, errors.New("confirmations must be positive"))
	}
	if p.Workers < 1 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if p.QueueCapacity < 0 {
		errs = append(errs, errors.New("queue capacity must not be negative"))
	}
	if p.BatchSize < 1 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if p.MaxReorgDepth == 0 {
		errs = append(errs, errors.New("max reorg depth must be positive"))
	}
	if p.RetryCeiling < 1 {
		errs = append(errs, errors.New("retry ceiling must be positive"))
	}
	return errors.Join(errs...)
}
