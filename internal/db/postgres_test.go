package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenPostgresRejectsMalformedDSN(t *testing.T) {
	_, err := OpenPostgres("host=localhost port=notaport", 0, 0)
	assert.ErrorContains(t, err, "invalid postgres dsn")
}
