// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package authtest provides in-memory collaborators for exercising the auth
// and account packages without Postgres, Redis or object storage.
package authtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/users/auth"
)

// # Accounts

// MemoryAccounts is a concurrency-safe [auth.AccountRepository].
type MemoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]auth.Account

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryAccounts returns an empty store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{accounts: make(map[string]auth.Account)}
}

func (store *MemoryAccounts) FindByUsernameOrEmail(_ context.Context, username, email string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.Err != nil {
		return nil, store.Err
	}
	for _, account := range store.accounts {
		if (username != "" && account.Username == username) || (email != "" && account.Email == email) {
			return clone(account), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *MemoryAccounts) FindByID(_ context.Context, id string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.Err != nil {
		return nil, store.Err
	}
	account, ok := store.accounts[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return clone(account), nil
}

func (store *MemoryAccounts) FindProfileByID(ctx context.Context, id string) (*auth.Account, error) {
	account, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.PasswordHash = ""
	account.RefreshToken = nil
	return account, nil
}

func (store *MemoryAccounts) Create(_ context.Context, account *auth.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.Err != nil {
		return store.Err
	}
	if store.taken(account) {
		return apperr.Conflict("User with this username or email already exists")
	}

	now := time.Now()
	account.CreatedAt, account.UpdatedAt = now, now
	store.accounts[account.ID] = *clone(*account)
	return nil
}

func (store *MemoryAccounts) SetRefreshToken(_ context.Context, id, token string) error {
	return store.update(id, func(account *auth.Account) error {
		account.RefreshToken = &token
		return nil
	})
}

func (store *MemoryAccounts) RotateRefreshToken(_ context.Context, id, current, next string) error {
	return store.update(id, func(account *auth.Account) error {
		if !account.HasRefreshToken(current) {
			return apperr.NotFound("User")
		}
		account.RefreshToken = &next
		return nil
	})
}

func (store *MemoryAccounts) SetPasswordHash(_ context.Context, id, hash string) error {
	return store.update(id, func(account *auth.Account) error {
		account.PasswordHash = hash
		return nil
	})
}

func (store *MemoryAccounts) UpdateProfile(_ context.Context, id string, changes auth.ProfileChanges) (*auth.Account, error) {
	var updated *auth.Account
	err := store.update(id, func(account *auth.Account) error {
		if changes.Email != nil {
			candidate := *account
			candidate.Email = *changes.Email
			if store.taken(&candidate) {
				return apperr.Conflict("User with this username or email already exists")
			}
			account.Email = *changes.Email
		}
		if changes.FullName != nil {
			account.FullName = *changes.FullName
		}
		if changes.AvatarURL != nil {
			account.AvatarURL = *changes.AvatarURL
		}
		if changes.CoverImageURL != nil {
			account.CoverImageURL = *changes.CoverImageURL
		}

		updated = clone(*account)
		updated.PasswordHash = ""
		updated.RefreshToken = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (store *MemoryAccounts) ClearRefreshToken(_ context.Context, id string) error {
	return store.update(id, func(account *auth.Account) error {
		account.RefreshToken = nil
		return nil
	})
}

// update applies change to the stored record under the lock. Only the fields
// change touches are written, matching the column-scoped SQL statements.
func (store *MemoryAccounts) update(id string, change func(*auth.Account) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.Err != nil {
		return store.Err
	}
	account, ok := store.accounts[id]
	if !ok {
		return apperr.NotFound("User")
	}
	if err := change(&account); err != nil {
		return err
	}
	account.UpdatedAt = time.Now()
	store.accounts[id] = account
	return nil
}

// Get returns a copy of the stored record, secrets included.
func (store *MemoryAccounts) Get(id string) (auth.Account, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	account, ok := store.accounts[id]
	return account, ok
}

// Delete removes a record, simulating an account deleted out of band.
func (store *MemoryAccounts) Delete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.accounts, id)
}

// taken reports whether another account holds the username or email.
func (store *MemoryAccounts) taken(account *auth.Account) bool {
	for id, existing := range store.accounts {
		if id == account.ID {
			continue
		}
		if existing.Username == account.Username || existing.Email == account.Email {
			return true
		}
	}
	return false
}

func clone(account auth.Account) *auth.Account {
	if account.RefreshToken != nil {
		token := *account.RefreshToken
		account.RefreshToken = &token
	}
	return &account
}

// # Interleaving

/*
InterleavedAccounts wraps a repository and runs AfterRead once, right after
the next successful read returns. Tests use it to slip a concurrent request
between a use case's read and its write.
*/
type InterleavedAccounts struct {
	auth.AccountRepository

	mu        sync.Mutex
	AfterRead func()
}

// Interleave arms hook for the next read.
func (store *InterleavedAccounts) Interleave(hook func()) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.AfterRead = hook
}

func (store *InterleavedAccounts) FindByUsernameOrEmail(ctx context.Context, username, email string) (*auth.Account, error) {
	account, err := store.AccountRepository.FindByUsernameOrEmail(ctx, username, email)
	store.fire(err)
	return account, err
}

func (store *InterleavedAccounts) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	account, err := store.AccountRepository.FindByID(ctx, id)
	store.fire(err)
	return account, err
}

func (store *InterleavedAccounts) FindProfileByID(ctx context.Context, id string) (*auth.Account, error) {
	account, err := store.AccountRepository.FindProfileByID(ctx, id)
	store.fire(err)
	return account, err
}

// fire clears the hook before running it so reads made by the hook itself
// pass straight through.
func (store *InterleavedAccounts) fire(err error) {
	if err != nil {
		return
	}

	store.mu.Lock()
	hook := store.AfterRead
	store.AfterRead = nil
	store.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// # Login Attempts

// MemoryAttempts is an [auth.LoginAttemptRepository] without expiry.
type MemoryAttempts struct {
	mu       sync.Mutex
	failures map[string]int

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryAttempts returns an empty counter set.
func NewMemoryAttempts() *MemoryAttempts {
	return &MemoryAttempts{failures: make(map[string]int)}
}

func (attempts *MemoryAttempts) Failures(_ context.Context, identifier string) (int, error) {
	attempts.mu.Lock()
	defer attempts.mu.Unlock()

	if attempts.Err != nil {
		return 0, attempts.Err
	}
	return attempts.failures[identifier], nil
}

func (attempts *MemoryAttempts) RecordFailure(_ context.Context, identifier string, _ time.Duration) (int, error) {
	attempts.mu.Lock()
	defer attempts.mu.Unlock()

	if attempts.Err != nil {
		return 0, attempts.Err
	}
	attempts.failures[identifier]++
	return attempts.failures[identifier], nil
}

func (attempts *MemoryAttempts) Reset(_ context.Context, identifier string) error {
	attempts.mu.Lock()
	defer attempts.mu.Unlock()

	if attempts.Err != nil {
		return attempts.Err
	}
	delete(attempts.failures, identifier)
	return nil
}

func (attempts *MemoryAttempts) RetryAfter(context.Context, string) (time.Duration, error) {
	return 0, attempts.Err
}

// # Uploads

// ErrUploadFailed is returned by [FakeUploader] when Fail is set.
var ErrUploadFailed = errors.New("authtest: upload failed")

// FakeUploader records uploads and returns deterministic URLs.
type FakeUploader struct {
	mu       sync.Mutex
	Uploaded []string

	// Fail makes uploads under the given prefix fail.
	Fail map[string]bool
}

func (uploader *FakeUploader) Upload(_ context.Context, prefix string, file *storage.LocalFile) (storage.Asset, error) {
	uploader.mu.Lock()
	defer uploader.mu.Unlock()

	if uploader.Fail[prefix] {
		return storage.Asset{}, ErrUploadFailed
	}

	key := prefix + "/" + file.OriginalName
	uploader.Uploaded = append(uploader.Uploaded, key)
	return storage.Asset{URL: "https://cdn.test/" + key, Key: key}, nil
}
