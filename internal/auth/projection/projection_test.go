package projection_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	fail   error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.fail != nil {
		return f.fail
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestFromAccountOmitsSecrets(t *testing.T) {
	doc := projection.FromAccount(domain.Account{
		ID:           "01J0",
		Username:     "alice",
		PasswordHash: "$argon2id$secret",
		Status:       domain.StatusActive,
		Role:         domain.RoleUser,
	})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "argon2id")
	require.Equal(t, "active", doc.Status)
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	sink := projection.NewKafkaSinkWithWriter(w)
	ctx := context.Background()

	doc := projection.AccountDocument{ID: "01JABC", Username: "alice", UpdatedAt: time.Now()}
	require.NoError(t, sink.Upsert(ctx, doc))
	require.NoError(t, sink.Delete(ctx, "01JABC"))
	require.Len(t, w.msgs, 2)

	var up projection.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &up))
	require.Equal(t, projection.EventUpserted, up.Type)
	require.Equal(t, "01JABC", string(w.msgs[0].Key))
	require.NotNil(t, up.Account)
	require.Equal(t, "alice", up.Account.Username)

	var del projection.Event
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &del))
	require.Equal(t, projection.EventDeleted, del.Type)
	require.Nil(t, del.Account)
	require.Equal(t, "01JABC", string(w.msgs[1].Key))

	require.NoError(t, sink.Close())
	require.True(t, w.closed)
}

func TestKafkaSinkSurfacesWriteErrors(t *testing.T) {
	boom := errors.New("broker down")
	sink := projection.NewKafkaSinkWithWriter(&fakeWriter{fail: boom})

	require.ErrorIs(t, sink.Upsert(context.Background(), projection.AccountDocument{ID: "x"}), boom)
}

func TestNop(t *testing.T) {
	var s projection.Sink = projection.Nop{}
	require.NoError(t, s.Upsert(context.Background(), projection.AccountDocument{}))
	require.NoError(t, s.Delete(context.Background(), "x"))
	require.NoError(t, s.Close())
}
