// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidly/internal/platform/migration"
)

func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/vidly", "pgx5://u:p@db:5432/vidly"},
		{"postgresql://u:p@db/vidly?sslmode=disable", "pgx5://u:p@db/vidly?sslmode=disable"},
		{"pgx5://u:p@db/vidly", "pgx5://u:p@db/vidly"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}
