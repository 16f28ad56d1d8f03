package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/frahmantamala/beacon/internal/core/common/dberr"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("insert user: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, true},
		{"postgres foreign key violation", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, false},
		{"unrelated", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dberr.IsUniqueViolation(tt.err))
		})
	}
}
