// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidly/pkg/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	id := uuid.New()

	parsed, err := googleuuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, uuid.New())
}

func TestIsValid(t *testing.T) {
	assert.True(t, uuid.IsValid(uuid.New()))
	assert.False(t, uuid.IsValid("not-a-uuid"))
	assert.False(t, uuid.IsValid(""))
}
