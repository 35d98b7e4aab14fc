package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/ports"
)

// PendingStore keeps the record linking a registration to its phone verification.
type PendingStore struct {
	storage ports.DurableStorage
	logger  *slog.Logger
}

// NewPendingStore binds a pending-verification store to storage.
func NewPendingStore(storage ports.DurableStorage, logger *slog.Logger) *PendingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingStore{storage: storage, logger: logger.With("component", "pending_verification")}
}

// Save writes the record, normalising the phone number.
func (p *PendingStore) Save(ctx context.Context, rec domainauth.PendingVerification) error {
	rec.PhoneNumber = domainauth.NormalizePhone(rec.PhoneNumber)
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode pending verification: %w", err)
	}
	if err := p.storage.SetItem(ctx, ports.KeyPendingVerification, string(raw)); err != nil {
		return fmt.Errorf("persist pending verification: %w", err)
	}
	return nil
}

// Peek reads the record without consuming it.
func (p *PendingStore) Peek(ctx context.Context) (domainauth.PendingVerification, bool) {
	raw, found, err := p.storage.GetItem(ctx, ports.KeyPendingVerification)
	if err != nil {
		p.logger.WarnContext(ctx, "read pending verification failed", "error", err)
		return domainauth.PendingVerification{}, false
	}
	if !found {
		return domainauth.PendingVerification{}, false
	}
	var rec domainauth.PendingVerification
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		p.logger.WarnContext(ctx, "discarding corrupt pending verification", "error", err)
		return domainauth.PendingVerification{}, false
	}
	if rec.IsZero() {
		return domainauth.PendingVerification{}, false
	}
	return rec, true
}

// Take reads the record and deletes it.
func (p *PendingStore) Take(ctx context.Context) (domainauth.PendingVerification, bool) {
	rec, ok := p.Peek(ctx)
	if ok {
		if err := p.Delete(ctx); err != nil {
			p.logger.WarnContext(ctx, "delete pending verification failed", "error", err)
		}
	}
	return rec, ok
}

// Delete removes the record.
func (p *PendingStore) Delete(ctx context.Context) error {
	if err := p.storage.RemoveItem(ctx, ports.KeyPendingVerification); err != nil {
		return fmt.Errorf("remove pending verification: %w", err)
	}
	return nil
}
