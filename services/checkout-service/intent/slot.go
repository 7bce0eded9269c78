package intent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Slot is the single pending-intent slot of a shopper. It is either empty or
// holds the most recently recorded intent.
type Slot struct {
	storage Storage
	logger  *zap.Logger
}

func NewSlot(storage Storage, l *zap.Logger) *Slot {
	if l == nil {
		l = zap.NewNop()
	}
	return &Slot{storage: storage, logger: l}
}

// takeAttempts bounds how often Take re-reads a slot that changed under it.
const takeAttempts = 3

// Pending returns the stored intent, or nil when the slot is empty. An
// unreadable entry is dropped and reported as empty.
func (s *Slot) Pending(ctx context.Context) (*Intent, error) {
	in, _, err := s.read(ctx)
	return in, err
}

// Take empties the slot and returns its intent when that intent is for
// productID. An intent for another product stays. When several callers race
// for the same intent only one of them gets it.
func (s *Slot) Take(ctx context.Context, productID string) (*Intent, error) {
	for attempt := 0; attempt < takeAttempts; attempt++ {
		in, raw, err := s.read(ctx)
		if err != nil || in == nil || in.ProductID != productID {
			return nil, err
		}
		taken, err := s.storage.CompareAndDelete(ctx, StorageKey, raw)
		if err != nil {
			return nil, fmt.Errorf("take pending intent: %w", err)
		}
		if taken {
			return in, nil
		}
	}
	return nil, nil
}

func (s *Slot) read(ctx context.Context) (*Intent, []byte, error) {
	data, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("read pending intent: %w", err)
	}
	if !ok {
		return nil, nil, nil
	}
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil || in.normalize() != nil {
		s.logger.Warn("dropping unreadable pending intent", zap.ByteString("value", data))
		_, _ = s.storage.CompareAndDelete(ctx, StorageKey, data)
		return nil, nil, nil
	}
	return &in, data, nil
}

// Put overwrites the slot with in.
func (s *Slot) Put(ctx context.Context, in Intent) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("store pending intent: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear pending intent: %w", err)
	}
	return nil
}
