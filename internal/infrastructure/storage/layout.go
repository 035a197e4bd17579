// Package storage holds the on-disk and object-key layout shared by the
// file store backends: user_<id>/<category>/<name> for organized files and
// user_<id>/temp/<key> for staged uploads.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

const (
	userDirPrefix = "user_"
	stagingDir    = "temp"

	// MaxCollisionAttempts bounds the name_N search of a single placement.
	MaxCollisionAttempts = 10000
)

// ValidateSegment rejects values that would escape their directory.
func ValidateSegment(kind, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return domain.WrapError(domain.ErrInvalidInput, kind, errors.New("must not be empty"))
	case value == "." || value == "..":
		return domain.WrapError(domain.ErrInvalidInput, kind, fmt.Errorf("%q is not allowed", value))
	case strings.ContainsAny(value, "/\\\x00"):
		return domain.WrapError(domain.ErrInvalidInput, kind, fmt.Errorf("%q contains a path separator", value))
	}
	return nil
}

func UserDir(userID string) (string, error) {
	if err := ValidateSegment("user id", userID); err != nil {
		return "", err
	}
	return userDirPrefix + userID, nil
}

// CategoryDir returns the slash-separated relative folder of a category.
func CategoryDir(userID string, category domain.Category) (string, error) {
	user, err := UserDir(userID)
	if err != nil {
		return "", err
	}
	if err := ValidateSegment("category", string(category)); err != nil {
		return "", err
	}
	if string(category) == stagingDir {
		return "", domain.WrapError(domain.ErrInvalidInput, "category", errors.New("reserved name"))
	}
	return path.Join(user, string(category)), nil
}

func StagingDir(userID string) (string, error) {
	user, err := UserDir(userID)
	if err != nil {
		return "", err
	}
	return path.Join(user, stagingDir), nil
}

// CandidateName returns filename for attempt 0 and base_N.ext afterwards.
func CandidateName(filename string, attempt int) string {
	if attempt == 0 {
		return filename
	}
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%d%s", base, attempt, ext)
}

// KeyedMutex serializes work per key, typically a destination folder.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
