package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/internal/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{Level: "info"}) })
	return &buf
}

func query(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLoggerWritesThroughZerolog(t *testing.T) {
	buf := captureLogs(t)
	l := newGormLogger(logger.Warn)

	l.Trace(context.Background(), time.Now(), query("SELECT 1"), errors.New("boom"))
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	l.Trace(context.Background(), time.Now(), query("SELECT 2"), gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), query("SELECT 3"), nil)
	assert.Contains(t, buf.String(), "slow query")
}

func TestGormLoggerRespectsLevel(t *testing.T) {
	buf := captureLogs(t)

	newGormLogger(logger.Silent).Trace(context.Background(), time.Now(), query("SELECT 1"), errors.New("boom"))
	assert.Zero(t, buf.Len())

	l := newGormLogger(logger.Warn)
	l.Trace(context.Background(), time.Now(), query("SELECT 1"), nil)
	assert.Zero(t, buf.Len())

	l.LogMode(logger.Info).Trace(context.Background(), time.Now(), query("SELECT 4"), nil)
	assert.Contains(t, buf.String(), "SELECT 4")
}

func TestGormLoggerUsesRequestLogger(t *testing.T) {
	buf := captureLogs(t)
	ctx := logging.WithContext(context.Background(), logging.With().Str("request_id", "req-1").Logger())

	newGormLogger(logger.Info).Warn(ctx, "pool %s", "busy")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), "pool busy")
}
