// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storage hands uploaded files over to the remote asset store.
//
// # Lifecycle
//
// A multipart file is first staged to the local upload directory as a [LocalFile].
// The request that staged it owns it exclusively and must call [LocalFile.Remove]
// before returning, whether the remote upload succeeded or not.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

// LocalFile is a request-owned temporary copy of an uploaded file.
type LocalFile struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

// Ext returns the lowercase extension of the original file name, including the dot.
func (f *LocalFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.OriginalName))
}

// Remove deletes the staged file. A file that is already gone is not an error.
func (f *LocalFile) Remove() error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: failed to remove staged file: %w", err)
	}
	return nil
}

// Asset is the result of a successful remote upload.
type Asset struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader is the remote asset store collaborator.
type Uploader interface {
	// Upload stores file under prefix and returns its public location.
	Upload(ctx context.Context, prefix string, file *LocalFile) (Asset, error)
}

// Stage copies src into dir under a unique name and returns the [LocalFile].
func Stage(src io.Reader, dir, originalName, contentType string) (*LocalFile, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: failed to create upload dir: %w", err)
	}

	name := ksuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create staged file: %w", err)
	}

	size, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("storage: failed to stage file: %w", err)
	}

	return &LocalFile{
		Path:         path,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         size,
	}, nil
}
