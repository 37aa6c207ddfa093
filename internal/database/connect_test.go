package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type recordingPinger struct {
	err      error
	mode     readpref.Mode
	deadline time.Time
}

func (p *recordingPinger) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	p.mode = rp.Mode()
	p.deadline, _ = ctx.Deadline()
	return p.err
}

func TestPingTargetsPrimaryWithDeadline(t *testing.T) {
	p := &recordingPinger{}
	assert.NoError(t, Ping(context.Background(), p))
	assert.Equal(t, readpref.PrimaryMode, p.mode)
	assert.False(t, p.deadline.IsZero())
	assert.WithinDuration(t, time.Now().Add(2*time.Second), p.deadline, time.Second)
}

func TestPingWrapsFailure(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := Ping(context.Background(), &recordingPinger{err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "mongo ping")
}
